package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout: idem:<token> holds the serialized result of a
// finished reserve call; idem:claim:<token> is the in-flight
// marker taken with SETNX so concurrent retries collapse to one
// winner.

const (
	idemResultTTL = 24 * time.Hour
	idemClaimTTL  = 2 * time.Minute
)

// RedisIdempotencyStore keeps reserve outcomes in Redis so retried
// requests replay the original result instead of double-booking.
type RedisIdempotencyStore struct {
	rdb *redis.Client
}

// NewRedisIdempotencyStore wraps an existing Redis client.
func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb}
}

func (s *RedisIdempotencyStore) Claim(ctx context.Context, token string) (bool, error) {
	return s.rdb.SetNX(ctx, "idem:claim:"+token, 1, idemClaimTTL).Result()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, "idem:claim:"+token).Err()
}

func (s *RedisIdempotencyStore) SaveResult(ctx context.Context, token string, res *ReserveResult) error {
	body, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, "idem:"+token, body, idemResultTTL).Err(); err != nil {
		return err
	}
	return s.rdb.Del(ctx, "idem:claim:"+token).Err()
}

func (s *RedisIdempotencyStore) GetResult(ctx context.Context, token string) (*ReserveResult, bool, error) {
	body, err := s.rdb.Get(ctx, "idem:"+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res ReserveResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, false, err
	}
	return &res, true, nil
}

// MemoryIdempotencyStore is the process-local fallback used when
// Redis is unavailable at startup, and by tests.  It provides the
// same collapse guarantee within a single process.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	claims  map[string]struct{}
	results map[string]ReserveResult
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		claims:  make(map[string]struct{}),
		results: make(map[string]ReserveResult),
	}
}

func (s *MemoryIdempotencyStore) Claim(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[token]; ok {
		return false, nil
	}
	s.claims[token] = struct{}{}
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, token)
	return nil
}

func (s *MemoryIdempotencyStore) SaveResult(_ context.Context, token string, res *ReserveResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[token] = *res
	delete(s.claims, token)
	return nil
}

func (s *MemoryIdempotencyStore) GetResult(_ context.Context, token string) (*ReserveResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[token]
	if !ok {
		return nil, false, nil
	}
	cp := res
	return &cp, true, nil
}
