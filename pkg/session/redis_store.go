package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session:"

// RedisStore keeps each session as a JSON value whose key expires together
// with the session. A per-user set indexes session ids for DeleteByUserID.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the "session:" key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) userKey(userID uuid.UUID) string {
	return s.prefix + "user:" + userID.String()
}

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	userKey := s.userKey(sess.UserID)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetArgs(ctx, s.key(sess.ID), data, redis.SetArgs{Mode: "NX", ExpireAt: sess.ExpiresAt})
		p.SAdd(ctx, userKey, sess.ID)
		p.ExpireNX(ctx, userKey, ttl)
		p.ExpireGT(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return &sess, nil
}

func (s *RedisStore) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.ExpiresAt = expiresAt

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	userKey := s.userKey(sess.UserID)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetArgs(ctx, s.key(id), data, redis.SetArgs{Mode: "XX", ExpireAt: expiresAt})
		p.ExpireGT(ctx, userKey, time.Until(expiresAt))
		return nil
	})
	if err != nil {
		// SET XX replies nil when the key vanished between GET and SET.
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		// Unreadable value: drop the key anyway.
		return s.client.Del(ctx, s.key(id)).Err()
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(id))
		p.SRem(ctx, s.userKey(sess.UserID), id)
		return nil
	})
	return err
}

// DeleteExpired is a no-op: Redis expires session keys by itself.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) error {
	return nil
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	userKey := s.userKey(userID)
	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}
	keys = append(keys, userKey)

	return s.client.Del(ctx, keys...).Err()
}
