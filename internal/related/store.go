package related

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists resolved lookups beyond the life of a Cache.
type Store interface {
	Load(ctx context.Context, scope, key string) ([]string, bool, error)
	Save(ctx context.Context, scope, key string, titles []string) error
}

// RedisStore keeps title lists as JSON under related:<scope>:<key>.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a store whose entries expire after ttl; zero keeps them forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(scope, key string) string {
	return fmt.Sprintf("related:%s:%s", scope, key)
}

func (s *RedisStore) Load(ctx context.Context, scope, key string) ([]string, bool, error) {
	raw, err := s.rdb.Get(ctx, redisKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var titles []string
	if err := json.Unmarshal(raw, &titles); err != nil {
		return nil, false, fmt.Errorf("decode stored titles: %w", err)
	}
	return titles, true, nil
}

func (s *RedisStore) Save(ctx context.Context, scope, key string, titles []string) error {
	raw, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisKey(scope, key), raw, s.ttl).Err()
}
