package domain

import "time"

// Message is a single entry in the append-only message log. Immutable once
// created.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// LastMessage is the tail of a conversation as shown in summaries.
type LastMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation summarizes the exchange between a viewer and one friend.
// Derived at query time, never stored.
type Conversation struct {
	ID          string       `json:"id"`
	Participant Contact      `json:"participant"`
	LastMessage *LastMessage `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
}
