package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
)

// TypingEvent is pushed to a recipient while a peer is composing. Transient,
// never persisted.
type TypingEvent struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// DeliveryService persists submitted messages and routes them to the
// recipient's live connection when one exists.
type DeliveryService interface {
	// Submit appends the message to the durable log, then pushes it to the
	// recipient if online. Persistence is unconditional: an offline recipient
	// still means success, they will see the message on the next history
	// fetch. A persistence failure means no delivery event at all.
	Submit(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error)
	// Typing forwards a typing indicator to the recipient if online.
	Typing(senderID, recipientID string, isTyping bool)
}

type deliveryService struct {
	messages repository.MessageRepository
	registry *presence.Registry
	logger   *logrus.Logger
}

func NewDeliveryService(
	messages repository.MessageRepository,
	registry *presence.Registry,
	logger *logrus.Logger,
) DeliveryService {
	return &deliveryService{
		messages: messages,
		registry: registry,
		logger:   logger,
	}
}

func (s *deliveryService) Submit(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error) {
	if recipientID == "" {
		return nil, errors.New("recipientId is required")
	}
	if content == "" {
		return nil, errors.New("content is required")
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}

	// no delivery without durability
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if conn, ok := s.registry.Lookup(recipientID); ok {
		if err := conn.Send("message", msg); err != nil {
			s.logger.WithError(err).WithField("recipient", recipientID).
				Warn("message push failed")
		}
	}

	return msg, nil
}

func (s *deliveryService) Typing(senderID, recipientID string, isTyping bool) {
	conn, ok := s.registry.Lookup(recipientID)
	if !ok {
		return
	}
	if err := conn.Send("typing", TypingEvent{UserID: senderID, IsTyping: isTyping}); err != nil {
		s.logger.WithError(err).WithField("recipient", recipientID).
			Debug("typing push failed")
	}
}
