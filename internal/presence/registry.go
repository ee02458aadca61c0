package presence

import "sync"

// Conn is a live client connection able to receive server pushes. Implemented
// by the socket layer; kept minimal so the registry is testable without a
// network.
type Conn interface {
	Send(event string, data any) error
}

// Registry maps user ids to their single live connection. It is the source of
// truth for "is this user reachable right now". Constructed at server start
// and injected wherever presence is consulted; entries exist only in memory
// and vanish on restart.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register records the connection for a user and announces the user online to
// every other registered connection. A later registration silently replaces
// an earlier one; there is no multi-device fan-out.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	r.conns[userID] = conn
	others := r.othersLocked(userID)
	r.mu.Unlock()

	for _, other := range others {
		_ = other.Send("userOnline", userID)
	}
}

// Unregister removes the mapping and announces the user offline. When conn is
// not the currently registered handle (a newer connection already replaced
// it), the call is a no-op so a stale disconnect cannot evict a live session.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if !ok || (conn != nil && current != conn) {
		r.mu.Unlock()
		return
	}
	delete(r.conns, userID)
	others := r.othersLocked(userID)
	r.mu.Unlock()

	for _, other := range others {
		_ = other.Send("userOffline", userID)
	}
}

// Lookup returns the live connection for a user. Absence is the normal state
// for offline users, never an error.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// IsOnline reports whether the user has a live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Online returns the ids of all currently connected users.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) othersLocked(userID string) []Conn {
	others := make([]Conn, 0, len(r.conns))
	for id, conn := range r.conns {
		if id != userID {
			others = append(others, conn)
		}
	}
	return others
}
