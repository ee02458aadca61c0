package socket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Vetinfrajer/VetinChatApp/internal/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// ErrConnClosed is returned by Send once the connection is shutting down or
// its outbound buffer is full. An unreachable peer is treated as already
// disconnected, never as a hang.
var ErrConnClosed = errors.New("connection closed")

// client is a single authenticated socket connection. It satisfies
// presence.Conn so the registry and delivery router can push events to it.
type client struct {
	userID   string
	conn     *websocket.Conn
	delivery service.DeliveryService
	logger   *logrus.Logger

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newClient(userID string, conn *websocket.Conn, delivery service.DeliveryService, logger *logrus.Logger) *client {
	return &client{
		userID:   userID,
		conn:     conn,
		delivery: delivery,
		logger:   logger,
		send:     make(chan []byte, 256),
		closed:   make(chan struct{}),
	}
}

// Send queues an event for the write pump. Non-blocking: a full buffer or a
// closed connection drops the event and reports ErrConnClosed.
func (c *client) Send(event string, data any) error {
	payload, err := marshalEvent(event, data)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.closed:
		return ErrConnClosed
	default:
		return ErrConnClosed
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// readPump consumes inbound frames until the connection drops. Malformed
// payloads and store failures are logged and dropped; no error frame goes
// back to the submitting client.
func (c *client) readPump(onClose func(*client)) {
	defer func() {
		onClose(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.logger.WithError(err).WithField("user", c.userID).
				Warn("bad socket frame")
			continue
		}

		switch evt.Event {
		case "sendMessage":
			var payload SendMessagePayload
			if err := json.Unmarshal(evt.Data, &payload); err != nil {
				c.logger.WithError(err).WithField("user", c.userID).
					Warn("bad sendMessage payload")
				continue
			}
			if _, err := c.delivery.Submit(context.Background(), c.userID, payload.RecipientID, payload.Content); err != nil {
				c.logger.WithError(err).WithField("user", c.userID).
					Error("message submission failed")
			}

		case "typing":
			var payload TypingPayload
			if err := json.Unmarshal(evt.Data, &payload); err != nil {
				c.logger.WithError(err).WithField("user", c.userID).
					Warn("bad typing payload")
				continue
			}
			c.delivery.Typing(c.userID, payload.RecipientID, payload.IsTyping)

		default:
			c.logger.WithField("event", evt.Event).WithField("user", c.userID).
				Debug("unknown socket event")
		}
	}
}

// writePump flushes queued events and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
