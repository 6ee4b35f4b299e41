package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists sessions keyed by Session.ID. Get returns ErrSessionNotFound
// for unknown ids; Delete of an unknown id is not an error.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
