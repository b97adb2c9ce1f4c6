package users

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RegisteredAt time.Time `json:"registered_at"`
	IsRemoved    bool      `json:"-"`
}

// PublicView is the representation returned for other users: no email, no
// removal state.
type PublicView struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Public returns the public representation of the user.
func (u *User) Public() PublicView {
	return PublicView{ID: u.ID, Username: u.Username, RegisteredAt: u.RegisteredAt}
}

// Profile is the representation a user sees of their own account.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Profile returns the owner-facing representation of the user.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email, RegisteredAt: u.RegisteredAt}
}
