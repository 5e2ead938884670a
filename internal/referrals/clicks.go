package referrals

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const clickKeyPrefix = "referral_clicks:"

// RedisClickStore keeps per-code click counters in redis. Counters are the
// hot path of the public redirect; postgres never sees individual clicks.
type RedisClickStore struct {
	rdb *redis.Client
}

// NewClickStore builds RedisClickStore instance.
func NewClickStore(rdb *redis.Client) *RedisClickStore {
	return &RedisClickStore{rdb: rdb}
}

// Record increments and returns the counter for a code.
func (s *RedisClickStore) Record(ctx context.Context, code string) (int64, error) {
	return s.rdb.Incr(ctx, clickKeyPrefix+code).Result()
}

// Count returns the current counter for a code. A code that has never been
// clicked reads as zero, not as an error.
func (s *RedisClickStore) Count(ctx context.Context, code string) (int64, error) {
	n, err := s.rdb.Get(ctx, clickKeyPrefix+code).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

var _ ClickStore = (*RedisClickStore)(nil)
