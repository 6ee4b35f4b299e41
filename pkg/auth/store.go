package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserStore persists users. Lookups return ErrUserNotFound when nothing
// matches; username and email lookups ignore case. CreateUser reports
// uniqueness violations as ErrUsernameTaken, ErrEmailTaken or
// ErrProviderLinked.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)

	// Tx runs fn against a store bound to one transaction. Writes made
	// through it commit when fn returns nil and are discarded otherwise.
	Tx(ctx context.Context, fn func(tx UserStore) error) error
}
