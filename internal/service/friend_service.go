package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
)

// FriendService manages directed friend links. Adding B as a friend of A
// does not create the reverse edge; B has to add A separately.
type FriendService interface {
	AddFriend(ctx context.Context, ownerID, friendID string) (*domain.Friend, error)
	ListFriends(ctx context.Context, ownerID string) ([]domain.Contact, error)
}

type friendService struct {
	users    repository.UserRepository
	friends  repository.FriendRepository
	registry *presence.Registry
}

func NewFriendService(
	users repository.UserRepository,
	friends repository.FriendRepository,
	registry *presence.Registry,
) FriendService {
	return &friendService{
		users:    users,
		friends:  friends,
		registry: registry,
	}
}

func (s *friendService) AddFriend(ctx context.Context, ownerID, friendID string) (*domain.Friend, error) {
	friendID = strings.TrimSpace(friendID)
	if friendID == "" {
		return nil, errors.New("userId is required")
	}
	if friendID == ownerID {
		return nil, errors.New("cannot add yourself")
	}

	if _, err := s.users.GetByID(ctx, friendID); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	link := &domain.Friend{
		ID:       uuid.NewString(),
		UserID:   ownerID,
		FriendID: friendID,
	}

	if err := s.friends.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *friendService) ListFriends(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	users, err := s.friends.ListFriends(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.Contact, len(users))
	for i := range users {
		contacts[i] = domain.Contact{
			Profile:  users[i].Profile(),
			IsOnline: s.registry.IsOnline(users[i].ID),
		}
	}
	return contacts, nil
}
