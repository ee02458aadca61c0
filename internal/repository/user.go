package repository

import (
	"context"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListOthers(ctx context.Context, excludeID string) ([]domain.User, error)
}
