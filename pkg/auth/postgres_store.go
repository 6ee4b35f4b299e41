package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/identity/pkg/pg"
)

const userColumns = `id, username, display_name, COALESCE(email, ''), COALESCE(password_hash, ''),
	COALESCE(google_id, ''), COALESCE(avatar_url, ''), created_at`

const (
	insertUserQuery = `INSERT INTO users
	(id, username, display_name, email, password_hash, google_id, avatar_url, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectUserByIDQuery       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	selectUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	selectUserByEmailQuery    = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	selectUserByGoogleIDQuery = `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
)

// Unique indexes created by the users migration.
const (
	usernameIndex = "users_username_lower_key"
	emailIndex    = "users_email_lower_key"
	googleIDIndex = "users_google_id_key"
)

type dbtx interface {
	pg.DBTX
	pg.TxBeginner
}

// PostgresUserStore keeps users in the users table.
type PostgresUserStore struct {
	db dbtx
}

var _ UserStore = (*PostgresUserStore)(nil)

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: pool}
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, u *User) error {
	if u == nil || u.ID == uuid.Nil {
		return ErrInvalidUser
	}
	_, err := s.db.Exec(ctx, insertUserQuery,
		u.ID, u.Username, u.DisplayName,
		nullable(u.Email), nullable(u.PasswordHash), nullable(u.GoogleID), nullable(u.AvatarURL),
		u.CreatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (s *PostgresUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.getOne(ctx, selectUserByIDQuery, id)
}

func (s *PostgresUserStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getOne(ctx, selectUserByUsernameQuery, username)
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getOne(ctx, selectUserByEmailQuery, email)
}

func (s *PostgresUserStore) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return s.getOne(ctx, selectUserByGoogleIDQuery, googleID)
}

// Tx runs fn inside a database transaction, or a savepoint when s is already
// transactional.
func (s *PostgresUserStore) Tx(ctx context.Context, fn func(tx UserStore) error) error {
	return pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&PostgresUserStore{db: tx})
	})
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.PasswordHash,
		&u.GoogleID, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func mapUniqueViolation(err error) error {
	if !pg.IsDuplicateKeyError(err) {
		return err
	}
	switch pg.ConstraintName(err) {
	case usernameIndex:
		return ErrUsernameTaken
	case emailIndex:
		return ErrEmailTaken
	case googleIDIndex:
		return ErrProviderLinked
	default:
		return errors.Join(ErrConflict, err)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
