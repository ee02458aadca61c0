package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/socket"
)

// Connect dials the live socket using the stored token and starts the read
// loop. The server refuses the handshake when the token is invalid.
func (s *Store) Connect() Result {
	token := s.Token()
	if token == "" {
		return fail("not authenticated")
	}

	wsURL := strings.Replace(s.baseURL, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fail(fmt.Sprintf("connect: %v", err))
	}

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.notify()

	go s.readLoop(conn)
	return ok()
}

// Disconnect closes the socket, if open.
func (s *Store) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.notify()
}

func (s *Store) readLoop(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
			s.connected = false
		}
		s.mu.Unlock()
		s.notify()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var evt socket.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			continue
		}
		s.handleEvent(evt)
	}
}

func (s *Store) handleEvent(evt socket.Event) {
	switch evt.Event {
	case "message":
		var msg domain.Message
		if err := json.Unmarshal(evt.Data, &msg); err != nil {
			return
		}
		// our own submissions were already rendered as a local echo; only
		// append pushes from the other side
		s.mu.Lock()
		if s.user == nil || msg.SenderID != s.user.ID {
			s.messages = append(s.messages, msg)
		}
		s.mu.Unlock()
		s.notify()

	case "userOnline", "userOffline":
		var userID string
		if err := json.Unmarshal(evt.Data, &userID); err != nil {
			return
		}
		s.mu.Lock()
		s.online[userID] = evt.Event == "userOnline"
		s.mu.Unlock()
		s.notify()

	case "typing":
		var payload struct {
			UserID   string `json:"userId"`
			IsTyping bool   `json:"isTyping"`
		}
		if err := json.Unmarshal(evt.Data, &payload); err != nil {
			return
		}
		s.mu.Lock()
		s.typing[payload.UserID] = payload.IsTyping
		s.mu.Unlock()
		s.notify()
	}
}

// SendMessage renders the message locally right away, then submits it over
// the socket. The optimistic copy keeps its local id; the server-confirmed
// record is never reconciled with it.
func (s *Store) SendMessage(content, recipientID string) Result {
	s.mu.Lock()
	if !s.connected || s.conn == nil {
		s.mu.Unlock()
		return fail("not connected")
	}

	var senderID string
	if s.user != nil {
		senderID = s.user.ID
	}
	echo := domain.Message{
		ID:          fmt.Sprintf("local-%d", time.Now().UnixNano()),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}
	s.messages = append(s.messages, echo)
	conn := s.conn
	s.mu.Unlock()
	s.notify()

	if err := s.emit(conn, "sendMessage", socket.SendMessagePayload{
		Content:     content,
		RecipientID: recipientID,
	}); err != nil {
		return fail(err.Error())
	}
	return ok()
}

// StartTyping signals composing intent to the recipient.
func (s *Store) StartTyping(recipientID string) {
	s.sendTyping(recipientID, true)
}

// StopTyping clears composing intent.
func (s *Store) StopTyping(recipientID string) {
	s.sendTyping(recipientID, false)
}

func (s *Store) sendTyping(recipientID string, isTyping bool) {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.mu.Unlock()

	if !connected || conn == nil {
		return
	}
	_ = s.emit(conn, "typing", socket.TypingPayload{
		RecipientID: recipientID,
		IsTyping:    isTyping,
	})
}

func (s *Store) emit(conn *websocket.Conn, event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(socket.Event{Event: event, Data: raw})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// LoadConversations refreshes the conversation summary list.
func (s *Store) LoadConversations() Result {
	s.setLoading(true)
	defer s.setLoading(false)

	var conversations []domain.Conversation
	if err := s.doJSON(http.MethodGet, "/api/conversations", nil, &conversations); err != nil {
		return fail(err.Error())
	}

	s.mu.Lock()
	s.conversations = conversations
	for i := range conversations {
		s.online[conversations[i].Participant.ID] = conversations[i].Participant.IsOnline
	}
	s.mu.Unlock()
	s.notify()
	return ok()
}

// LoadMessages fetches the history with a friend and makes that conversation
// active.
func (s *Store) LoadMessages(friendID string) Result {
	s.setLoading(true)
	defer s.setLoading(false)

	var messages []domain.Message
	if err := s.doJSON(http.MethodGet, "/api/conversations/"+friendID+"/messages", nil, &messages); err != nil {
		return fail(err.Error())
	}

	s.mu.Lock()
	s.messages = messages
	s.activeConversation = friendID
	s.mu.Unlock()
	s.notify()
	return ok()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.notify()
}
