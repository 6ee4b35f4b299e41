package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/slug"
)

const (
	// DefaultExchangeTimeout bounds the code exchange and profile fetch.
	DefaultExchangeTimeout = 10 * time.Second

	usernameSlugMaxLength = 40
	provisionAttempts     = 3
)

// ProviderProfile is the provider's view of the signed-in account.
type ProviderProfile struct {
	ProviderUserID string
	Name           string
	AvatarURL      string
}

// ProviderAdapter hides the provider-specific parts of the authorization
// code flow. ResolveProfile returns an error wrapping
// ErrFederationExchangeFailed when the provider rejects the code.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state, verifier string) string
	ResolveProfile(ctx context.Context, code, verifier string) (ProviderProfile, error)
}

// Pending is a started federation. State and CodeVerifier must come back on
// the callback.
type Pending struct {
	URL          string
	State        string
	CodeVerifier string
}

// Callback holds the values returned by the provider and those stored when
// the flow began.
type Callback struct {
	Code           string
	State          string
	StoredState    string
	StoredVerifier string
}

// FederationService signs users in through an external identity provider,
// provisioning an account on first sign-in.
type FederationService struct {
	users     UserStore
	sessions  SessionCreator
	adapter   ProviderAdapter
	registrar Registrar
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

type FederationOption func(*FederationService)

func WithFederationLogger(l *slog.Logger) FederationOption {
	return func(s *FederationService) { s.logger = l }
}

// WithExchangeTimeout bounds the provider round trips of one callback.
func WithExchangeTimeout(d time.Duration) FederationOption {
	return func(s *FederationService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithFederationClock(now func() time.Time) FederationOption {
	return func(s *FederationService) { s.now = now }
}

// NewFederationService wires the flow. A nil registrar accepts every user.
func NewFederationService(users UserStore, sessions SessionCreator, adapter ProviderAdapter, registrar Registrar, opts ...FederationOption) *FederationService {
	if registrar == nil {
		registrar = NopRegistrar
	}
	s := &FederationService{
		users:     users,
		sessions:  sessions,
		adapter:   adapter,
		registrar: registrar,
		logger:    logger.Discard(),
		timeout:   DefaultExchangeTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("federation"), logger.Provider(adapter.ProviderID()))
	return s
}

// ProviderID names the configured provider.
func (s *FederationService) ProviderID() string {
	return s.adapter.ProviderID()
}

// Begin creates a fresh state and PKCE verifier and the provider URL to
// redirect to.
func (s *FederationService) Begin() (*Pending, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()
	return &Pending{
		URL:          s.adapter.AuthURL(state, verifier),
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

// Complete validates the callback, exchanges the code and signs the user in.
// Nothing is exchanged or written when the state check fails.
func (s *FederationService) Complete(ctx context.Context, cb Callback) (*SignIn, error) {
	if cb.Code == "" || cb.State == "" || cb.StoredState == "" || cb.StoredVerifier == "" {
		return nil, ErrFederationStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(cb.State), []byte(cb.StoredState)) != 1 {
		s.logger.WarnContext(ctx, "oauth state mismatch", logger.Event("federation.state_mismatch"))
		return nil, ErrFederationStateMismatch
	}

	profile, err := s.resolveProfile(ctx, cb.Code, cb.StoredVerifier)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByGoogleID(ctx, profile.ProviderUserID)
	switch {
	case err == nil:
		return s.startSession(ctx, user)
	case !errors.Is(err, ErrUserNotFound):
		return nil, errors.Join(ErrStorageFailure, err)
	}

	user, err = s.provision(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user)
}

func (s *FederationService) resolveProfile(ctx context.Context, code, verifier string) (ProviderProfile, error) {
	exCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	profile, err := s.adapter.ResolveProfile(exCtx, code, verifier)
	if err != nil {
		s.logger.WarnContext(ctx, "provider exchange failed",
			logger.Error(err),
			logger.Duration(s.now().Sub(start)),
		)
		if errors.Is(err, ErrFederationExchangeFailed) {
			return ProviderProfile{}, err
		}
		if errors.Is(err, context.DeadlineExceeded) || exCtx.Err() != nil {
			return ProviderProfile{}, errors.Join(ErrFederationExchangeFailed, err)
		}
		return ProviderProfile{}, fmt.Errorf("resolve provider profile: %w", err)
	}
	if profile.ProviderUserID == "" {
		return ProviderProfile{}, ErrInvalidProfile
	}
	return profile, nil
}

// provision creates the user and registers it downstream in one
// transaction. A concurrent first sign-in of the same account resolves to
// the user that won the insert.
func (s *FederationService) provision(ctx context.Context, profile ProviderProfile) (*User, error) {
	var lastErr error
	for range provisionAttempts {
		user := s.newUser(profile)
		err := s.users.Tx(ctx, func(tx UserStore) error {
			if err := tx.CreateUser(ctx, user); err != nil {
				return err
			}
			if err := s.registrar.RegisterIdentity(ctx, user); err != nil {
				return errors.Join(ErrRegistrationFailed, err)
			}
			return nil
		})
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "user provisioned", logger.UserID(user.ID), logger.Event("user.provisioned"))
			return user, nil
		case errors.Is(err, ErrRegistrationFailed):
			s.logger.ErrorContext(ctx, "identity registration failed", logger.Error(err))
			return nil, err
		case errors.Is(err, ErrProviderLinked):
			existing, lookupErr := s.users.GetUserByGoogleID(ctx, profile.ProviderUserID)
			if lookupErr != nil {
				return nil, errors.Join(ErrStorageFailure, lookupErr)
			}
			return existing, nil
		case errors.Is(err, ErrUsernameTaken):
			// The id suffix is random; another attempt picks a new one.
			lastErr = err
			continue
		default:
			return nil, errors.Join(ErrStorageFailure, err)
		}
	}
	return nil, errors.Join(ErrStorageFailure, lastErr)
}

func (s *FederationService) newUser(profile ProviderProfile) *User {
	id := uuid.New()
	username := slug.Make(profile.Name, slug.StripPunctuation(), slug.MaxLength(usernameSlugMaxLength)) + "-" + id.String()[:4]
	displayName := strings.TrimSpace(profile.Name)
	if displayName == "" {
		displayName = username
	}
	return &User{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		AvatarURL:   profile.AvatarURL,
		GoogleID:    profile.ProviderUserID,
		CreatedAt:   s.now().UTC(),
	}
}

func (s *FederationService) startSession(ctx context.Context, user *User) (*SignIn, error) {
	token, sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return &SignIn{User: user, Token: token, Session: sess}, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
