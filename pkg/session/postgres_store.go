package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/identity/pkg/pg"
)

const (
	insertSessionQuery = `INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	selectSessionQuery = `SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1`
	updateExpiryQuery  = `UPDATE sessions SET expires_at = $2 WHERE id = $1`
	deleteSessionQuery = `DELETE FROM sessions WHERE id = $1`
	deleteExpiredQuery = `DELETE FROM sessions WHERE expires_at <= $1`
	deleteByUserQuery  = `DELETE FROM sessions WHERE user_id = $1`
)

// PostgresStore keeps sessions in the sessions table.
type PostgresStore struct {
	db pg.DBTX
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db pg.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}
	_, err := s.db.Exec(ctx, insertSessionQuery, sess.ID, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if pg.IsForeignKeyViolationError(err) {
		return errors.Join(ErrInvalidSession, err)
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(ctx, selectSessionQuery, id).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStore) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	tag, err := s.db.Exec(ctx, updateExpiryQuery, id, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, deleteSessionQuery, id)
	return err
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := s.db.Exec(ctx, deleteExpiredQuery, now)
	return err
}

func (s *PostgresStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, deleteByUserQuery, userID)
	return err
}
