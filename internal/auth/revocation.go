package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisRevocationStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, prefix: "todo:revoked:"}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocationStore is the single-process fallback when Redis is not
// configured.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: map[string]time.Time{}, now: time.Now}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, until := range s.entries {
		if !until.After(now) {
			delete(s.entries, id)
		}
	}
	s.entries[tokenID] = now.Add(ttl)
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.entries[tokenID]
	return ok && until.After(s.now()), nil
}
