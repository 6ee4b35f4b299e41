package auth

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/password"
	"github.com/dmitrymomot/identity/pkg/validator"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// RegisterInput carries the signup form. Fields are trimmed before use.
type RegisterInput struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// PasswordService signs users up and in with a username and password.
type PasswordService struct {
	users    UserStore
	sessions SessionCreator
	hasher   *password.Hasher
	logger   *slog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type PasswordOption func(*PasswordService)

func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(s *PasswordService) { s.logger = l }
}

// WithHasher replaces the default argon2id hasher, e.g. with cheaper
// parameters in tests.
func WithHasher(h *password.Hasher) PasswordOption {
	return func(s *PasswordService) { s.hasher = h }
}

func WithPasswordClock(now func() time.Time) PasswordOption {
	return func(s *PasswordService) { s.now = now }
}

func NewPasswordService(users UserStore, sessions SessionCreator, opts ...PasswordOption) *PasswordService {
	s := &PasswordService{
		users:    users,
		sessions: sessions,
		hasher:   password.New(),
		logger:   logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("password_auth"))
	return s
}

// Authenticate checks username and password and starts a session. An
// unknown username, an account without a password and a wrong password all
// return ErrInvalidCredentials.
func (s *PasswordService) Authenticate(ctx context.Context, username, pass string) (*SignIn, error) {
	username = strings.TrimSpace(username)
	pass = strings.TrimSpace(pass)

	if err := validator.Apply(
		validator.Required("username", username),
		validator.Required("password", pass),
	); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.burnVerify(pass)
		s.logger.InfoContext(ctx, "login rejected", logger.Username(username), logger.Event("login.unknown_user"))
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, errors.Join(ErrStorageFailure, err)
	}

	if !user.HasPassword() {
		s.burnVerify(pass)
		s.logger.InfoContext(ctx, "login rejected", logger.UserID(user.ID), logger.Event("login.no_password"))
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, pass) {
		s.logger.InfoContext(ctx, "login rejected", logger.UserID(user.ID), logger.Event("login.wrong_password"))
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Register validates in, creates the account and starts a session.
func (s *PasswordService) Register(ctx context.Context, in RegisterInput) (*SignIn, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)

	if err := validator.Apply(
		validator.Required("username", in.Username),
		validator.Matches("username", in.Username, usernamePattern, "letters, digits, - and _"),
		validator.Required("email", in.Email),
		validator.Email("email", in.Email),
		validator.Required("password", in.Password),
		validator.MinLen("password", in.Password, MinPasswordLength),
	); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Username:     in.Username,
		DisplayName:  in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	// The unique indexes catch a signup racing between the checks above and
	// this insert.
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, errors.Join(ErrStorageFailure, err)
	}

	s.logger.InfoContext(ctx, "user registered", logger.UserID(user.ID), logger.Event("user.registered"))
	return s.startSession(ctx, user)
}

func (s *PasswordService) startSession(ctx context.Context, user *User) (*SignIn, error) {
	token, sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return &SignIn{User: user, Token: token, Session: sess}, nil
}

// burnVerify spends the cost of one verification so a missing account is
// not distinguishable from a wrong password by timing.
func (s *PasswordService) burnVerify(pass string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(s.dummyHash, pass)
	}
}
