package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are
	// incorrect. It is deliberately identical for unknown emails and wrong
	// passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned when registering with an email that is
	// already claimed.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Stats aggregates per-user counters shown on the profile page.
type Stats struct {
	Friends  int `json:"friends"`
	Messages int `json:"messages"`
}

// UserService describes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetProfile(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, email, bio string) (*domain.User, error)
	Stats(ctx context.Context, id string) (Stats, error)
	ListOthers(ctx context.Context, id string) ([]domain.Contact, error)
}

type userService struct {
	users    repository.UserRepository
	friends  repository.FriendRepository
	messages repository.MessageRepository
	registry *presence.Registry
}

func NewUserService(
	users repository.UserRepository,
	friends repository.FriendRepository,
	messages repository.MessageRepository,
	registry *presence.Registry,
) UserService {
	return &userService{
		users:    users,
		friends:  friends,
		messages: messages,
		registry: registry,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, errors.New("name is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id, name, email, bio string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, errors.New("name is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}

	user := &domain.User{
		ID:    id,
		Name:  name,
		Email: email,
		Bio:   bio,
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case strings.Contains(strings.ToLower(err.Error()), "already exists"):
			return nil, ErrDuplicateEmail
		case strings.Contains(strings.ToLower(err.Error()), "not found"):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	return user, nil
}

func (s *userService) Stats(ctx context.Context, id string) (Stats, error) {
	friends, err := s.friends.CountByOwner(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	messages, err := s.messages.CountByUser(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Friends: friends, Messages: messages}, nil
}

func (s *userService) ListOthers(ctx context.Context, id string) ([]domain.Contact, error) {
	users, err := s.users.ListOthers(ctx, id)
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
