package socket

import "encoding/json"

// Event is the wire frame exchanged over the socket in both directions.
//
// Server→client events: "userOnline", "userOffline", "message", "typing".
// Client→server events: "sendMessage", "typing".
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the client→server submission frame.
type SendMessagePayload struct {
	Content     string `json:"content"`
	RecipientID string `json:"recipientId"`
}

// TypingPayload is the client→server typing intent frame.
type TypingPayload struct {
	RecipientID string `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
}

func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: event, Data: raw})
}
