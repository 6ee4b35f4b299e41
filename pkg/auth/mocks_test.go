package auth_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/identity/pkg/auth"
	"github.com/dmitrymomot/identity/pkg/chat"
)

// MockUserStore is a mock implementation of auth.UserStore. Tx runs the
// callback against the mock itself.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateUser(ctx context.Context, u *auth.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) GetUserByGoogleID(ctx context.Context, googleID string) (*auth.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) Tx(ctx context.Context, fn func(tx auth.UserStore) error) error {
	return fn(m)
}

// MockAdapter is a mock implementation of auth.ProviderAdapter.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) ProviderID() string {
	return "mock"
}

func (m *MockAdapter) AuthURL(state, verifier string) string {
	return "https://provider.test/auth?state=" + state
}

func (m *MockAdapter) ResolveProfile(ctx context.Context, code, verifier string) (auth.ProviderProfile, error) {
	args := m.Called(ctx, code, verifier)
	return args.Get(0).(auth.ProviderProfile), args.Error(1)
}

// MockRegistrar is a mock implementation of auth.Registrar.
type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) RegisterIdentity(ctx context.Context, u *auth.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type chatUpserterFunc func(id, username, name, image string)

func (f chatUpserterFunc) UpsertUser(_ context.Context, u chat.User) error {
	f(u.ID, u.Username, u.Name, u.Image)
	return nil
}
