package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/identity/pkg/session"
)

// User is an application account. Username and Email are unique without
// regard to case. A user has a PasswordHash, a GoogleID, or both.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// Identity is the outcome of resolving a request. The zero value is
// anonymous.
type Identity struct {
	User    *User
	Session *session.Session
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.User != nil && i.Session != nil
}

// SignIn is returned by the authenticators: the user and the token to put in
// the session cookie.
type SignIn struct {
	User    *User
	Token   string
	Session *session.Session
}
