package repository

import (
	"context"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
)

// FriendRepository defines persistence operations for directed friend links.
type FriendRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, link *domain.Friend) error
	// ListFriends resolves the users this owner links to, edge direction only.
	ListFriends(ctx context.Context, ownerID string) ([]domain.User, error)
	Exists(ctx context.Context, ownerID, friendID string) (bool, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}
