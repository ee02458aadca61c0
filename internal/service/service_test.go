package service

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository/sqlite"
)

type testEnv struct {
	users         UserService
	friends       FriendService
	conversations ConversationService
	delivery      DeliveryService
	registry      *presence.Registry

	userRepo    repository.UserRepository
	friendRepo  repository.FriendRepository
	messageRepo repository.MessageRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "chat-*.db")
	require.NoError(t, err)
	tmpfile.Close()

	db, err := sqlite.Open(tmpfile.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	friendRepo := sqlite.NewFriendRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, friendRepo.Init(ctx))
	require.NoError(t, messageRepo.Init(ctx))

	registry := presence.NewRegistry()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &testEnv{
		users:         NewUserService(userRepo, friendRepo, messageRepo, registry),
		friends:       NewFriendService(userRepo, friendRepo, registry),
		conversations: NewConversationService(friendRepo, messageRepo, registry),
		delivery:      NewDeliveryService(messageRepo, registry, logger),
		registry:      registry,
		userRepo:      userRepo,
		friendRepo:    friendRepo,
		messageRepo:   messageRepo,
	}
}

func (e *testEnv) registerUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), name, email, "password123")
	require.NoError(t, err)
	return user
}

func (e *testEnv) befriend(t *testing.T, ownerID, friendID string) {
	t.Helper()
	_, err := e.friends.AddFriend(context.Background(), ownerID, friendID)
	require.NoError(t, err)
}

// recordedEvent captures one push to a fake connection.
type recordedEvent struct {
	Event string
	Data  any
}

type fakeConn struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (c *fakeConn) Send(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{Event: event, Data: data})
	return nil
}

func (c *fakeConn) Events() []recordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]recordedEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) eventsOf(kind string) []recordedEvent {
	var out []recordedEvent
	for _, evt := range c.Events() {
		if evt.Event == kind {
			out = append(out, evt)
		}
	}
	return out
}
