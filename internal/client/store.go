// Package client implements the client-side session store: a reactive state
// mirror of the server's view used by presentation layers. It owns the REST
// calls and the live socket handle.
package client

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
)

// Result is returned from store actions; failures carry a human-readable
// error for inline rendering.
type Result struct {
	Success bool
	Error   string
}

func ok() Result             { return Result{Success: true} }
func fail(msg string) Result { return Result{Success: false, Error: msg} }

// Store holds the client session state. All fields are guarded by mu; reads
// go through accessor methods so consumers never see a torn update.
type Store struct {
	baseURL string
	httpc   *http.Client

	mu                 sync.Mutex
	token              string
	user               *domain.Profile
	conn               *websocket.Conn
	connected          bool
	messages           []domain.Message
	conversations      []domain.Conversation
	online             map[string]bool
	typing             map[string]bool
	activeConversation string
	loading            bool

	// OnChange, when set before any action runs, is invoked after every
	// state mutation.
	OnChange func()
}

func NewStore(baseURL string) *Store {
	return &Store{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		online:  make(map[string]bool),
		typing:  make(map[string]bool),
	}
}

func (s *Store) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// User returns the authenticated profile, or nil before login.
func (s *Store) User() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a bearer token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsConnected reports whether the socket is live.
func (s *Store) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Messages returns a copy of the active conversation's message list.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Conversations returns a copy of the loaded conversation summaries.
func (s *Store) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// IsOnline reports the last known presence of a user.
func (s *Store) IsOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID]
}

// IsTyping reports whether a user is currently composing to us.
func (s *Store) IsTyping(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing[userID]
}

// Loading reports whether a list fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ActiveConversation returns the friend id whose history is loaded.
func (s *Store) ActiveConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeConversation
}
