package domain

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Bio          string
	CreatedAt    time.Time
}

// Profile is the public view of a user, safe to return over the API.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

// Contact is a profile annotated with live presence.
type Contact struct {
	Profile
	IsOnline bool `json:"isOnline"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Bio:   u.Bio,
	}
}
