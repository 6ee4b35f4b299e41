package auth

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserStore is an in-process UserStore for tests and local runs.
// Writers are serialized so a transaction commits against the state it read.
type MemoryUserStore struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	users   userMap
}

var _ UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(userMap)}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, u *User) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.create(u)
}

func (s *MemoryUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.byID(id)
}

func (s *MemoryUserStore) GetUserByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.find(func(u User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *MemoryUserStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.find(func(u User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (s *MemoryUserStore) GetUserByGoogleID(_ context.Context, googleID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.find(func(u User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

// Tx runs fn on a private copy of the users and swaps it in on success.
func (s *MemoryUserStore) Tx(ctx context.Context, fn func(tx UserStore) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	tx := &memoryTx{users: maps.Clone(s.users)}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.users = tx.users
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// memoryTx is the store handed to a transaction callback. It is not safe
// for concurrent use.
type memoryTx struct {
	users userMap
}

func (t *memoryTx) CreateUser(_ context.Context, u *User) error {
	return t.users.create(u)
}

func (t *memoryTx) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	return t.users.byID(id)
}

func (t *memoryTx) GetUserByUsername(_ context.Context, username string) (*User, error) {
	return t.users.find(func(u User) bool { return strings.EqualFold(u.Username, username) })
}

func (t *memoryTx) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return t.users.find(func(u User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (t *memoryTx) GetUserByGoogleID(_ context.Context, googleID string) (*User, error) {
	return t.users.find(func(u User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

// Tx nests like a savepoint.
func (t *memoryTx) Tx(_ context.Context, fn func(tx UserStore) error) error {
	nested := &memoryTx{users: maps.Clone(t.users)}
	if err := fn(nested); err != nil {
		return err
	}
	t.users = nested.users
	return nil
}

type userMap map[uuid.UUID]User

func (m userMap) create(u *User) error {
	if u == nil || u.ID == uuid.Nil {
		return ErrInvalidUser
	}
	if _, ok := m[u.ID]; ok {
		return ErrConflict
	}
	for _, existing := range m {
		switch {
		case strings.EqualFold(existing.Username, u.Username):
			return ErrUsernameTaken
		case u.Email != "" && strings.EqualFold(existing.Email, u.Email):
			return ErrEmailTaken
		case u.GoogleID != "" && existing.GoogleID == u.GoogleID:
			return ErrProviderLinked
		}
	}
	m[u.ID] = *u
	return nil
}

func (m userMap) byID(id uuid.UUID) (*User, error) {
	u, ok := m[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m userMap) find(match func(User) bool) (*User, error) {
	for _, u := range m {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
