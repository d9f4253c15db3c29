package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/postline/utils"
)

const keyPrefix = "pagecache:"

// RedisStore keeps cached pages in Redis so every process behind the
// same Redis sees the same cache.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if utils.Sugar != nil && err != redis.Nil {
			utils.Sugar.Debugf("page cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("page cache set failed key=%s err=%v", key, err)
		}
	}
}

func (s *RedisStore) Clear(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = s.client.Del(ctx, keyPrefix+key).Err()
}
