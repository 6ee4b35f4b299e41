package auth

import (
	"context"

	"github.com/dmitrymomot/identity/pkg/chat"
)

// Registrar announces a newly provisioned user to a downstream service.
// It runs inside the provisioning transaction: an error rolls the user back.
type Registrar interface {
	RegisterIdentity(ctx context.Context, u *User) error
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(ctx context.Context, u *User) error

func (f RegistrarFunc) RegisterIdentity(ctx context.Context, u *User) error {
	return f(ctx, u)
}

// NopRegistrar accepts every user.
var NopRegistrar = RegistrarFunc(func(context.Context, *User) error { return nil })

// ChatUpserter is implemented by *chat.Client.
type ChatUpserter interface {
	UpsertUser(ctx context.Context, u chat.User) error
}

// NewChatRegistrar registers users with the chat service. The chat name is
// the username.
func NewChatRegistrar(c ChatUpserter) Registrar {
	return RegistrarFunc(func(ctx context.Context, u *User) error {
		return c.UpsertUser(ctx, chat.User{
			ID:       u.ID.String(),
			Username: u.Username,
			Name:     u.Username,
			Image:    u.AvatarURL,
		})
	})
}

var _ ChatUpserter = (*chat.Client)(nil)
