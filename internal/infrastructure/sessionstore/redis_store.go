// Package sessionstore keeps browser session state on the server, in Redis
// when it is reachable and in process memory otherwise.
package sessionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pawnfin/console/internal/domain/session"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session hashes in Redis.
const DefaultKeyPrefix = "console:session:"

const (
	fieldToken       = "token"
	fieldCompanyID   = "companyId"
	fieldCompanyName = "companyName"
)

// RedisStore keeps each session as a hash that expires after the idle TTL.
// Every load and save pushes the expiry out again.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, opts *redis.Options, keyPrefix string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client, keyPrefix, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

// Load returns the state of id, or session.ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, id string) (session.State, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return session.State{}, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return session.State{}, session.ErrNotFound
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key(id), s.ttl).Err(); err != nil {
			return session.State{}, fmt.Errorf("failed to refresh session: %w", err)
		}
	}
	return session.State{
		Token:       fields[fieldToken],
		CompanyID:   fields[fieldCompanyID],
		CompanyName: fields[fieldCompanyName],
	}, nil
}

// Save replaces the whole hash in one transaction so token and company never
// mix across writes. An empty state deletes the session.
func (s *RedisStore) Save(ctx context.Context, id string, state session.State) error {
	if state == (session.State{}) {
		return s.Delete(ctx, id)
	}

	values := map[string]any{}
	if state.Token != "" {
		values[fieldToken] = state.Token
	}
	if state.CompanyID != "" {
		values[fieldCompanyID] = state.CompanyID
	}
	if state.CompanyName != "" {
		values[fieldCompanyName] = state.CompanyName
	}

	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ session.Store = (*RedisStore)(nil)
