package domain

import "time"

// Friend is a directed edge from one user to another. A link from A to B
// does not imply a link from B to A; lookups always follow the edge
// direction ("following" semantics).
type Friend struct {
	ID        string
	UserID    string
	FriendID  string
	CreatedAt time.Time
}
