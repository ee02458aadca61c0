package repository

import (
	"context"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
)

// MessageRepository defines persistence operations for the append-only
// message log.
type MessageRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, msg *domain.Message) error
	// ListBetween returns every message exchanged between the two users in
	// either direction, ordered by timestamp ascending.
	ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error)
	// LastBetween returns the most recent message between the two users, or
	// nil when none exists.
	LastBetween(ctx context.Context, userA, userB string) (*domain.Message, error)
	// CountUnread counts messages from sender to recipient whose ids do not
	// appear among the recipient's own messages back to the sender.
	CountUnread(ctx context.Context, senderID, recipientID string) (int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
