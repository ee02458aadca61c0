package service

import (
	"context"
	"errors"
	"sort"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
)

// ErrNotFriends is returned when history is requested for a user the viewer
// has no friend link to. History is never exposed outside a link, even when
// messages exist.
var ErrNotFriends = errors.New("conversation not found")

// ConversationService derives conversation summaries and history from the
// durable message log.
type ConversationService interface {
	ListConversations(ctx context.Context, viewerID string) ([]domain.Conversation, error)
	ListHistory(ctx context.Context, viewerID, friendID string) ([]domain.Message, error)
}

type conversationService struct {
	friends  repository.FriendRepository
	messages repository.MessageRepository
	registry *presence.Registry
}

func NewConversationService(
	friends repository.FriendRepository,
	messages repository.MessageRepository,
	registry *presence.Registry,
) ConversationService {
	return &conversationService{
		friends:  friends,
		messages: messages,
		registry: registry,
	}
}

func (s *conversationService) ListConversations(ctx context.Context, viewerID string) ([]domain.Conversation, error) {
	friends, err := s.friends.ListFriends(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, 0, len(friends))
	for i := range friends {
		friend := friends[i]

		last, err := s.messages.LastBetween(ctx, viewerID, friend.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.messages.CountUnread(ctx, friend.ID, viewerID)
		if err != nil {
			return nil, err
		}

		conv := domain.Conversation{
			ID: friend.ID,
			Participant: domain.Contact{
				Profile:  friend.Profile(),
				IsOnline: s.registry.IsOnline(friend.ID),
			},
			UnreadCount: unread,
		}
		if last != nil {
			conv.LastMessage = &domain.LastMessage{
				Content:   last.Content,
				Timestamp: last.Timestamp,
			}
		}
		conversations = append(conversations, conv)
	}

	// most recently active first; conversations without messages sort last,
	// then by participant name
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		switch {
		case a.LastMessage == nil && b.LastMessage == nil:
			return a.Participant.Name < b.Participant.Name
		case a.LastMessage == nil:
			return false
		case b.LastMessage == nil:
			return true
		default:
			return a.LastMessage.Timestamp.After(b.LastMessage.Timestamp)
		}
	})

	return conversations, nil
}

func (s *conversationService) ListHistory(ctx context.Context, viewerID, friendID string) ([]domain.Message, error) {
	linked, err := s.friends.Exists(ctx, viewerID, friendID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrNotFriends
	}

	return s.messages.ListBetween(ctx, viewerID, friendID)
}
