package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// RedisStorage implements Ledger on a Redis set per search. SADD is the
// transactional check-and-insert required when more than one process writes
// to the ledger.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage parses redisURL, verifies connectivity and returns
// a Redis-backed ledger.
func NewRedisStorage(ctx context.Context, redisURL string) (Ledger, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, oops.With("redis_url", redisURL, "context", "failed to parse redis url").Wrap(err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, oops.With("context", "redis ping failed").Wrap(err)
	}

	return &RedisStorage{client: client}, nil
}

func (s *RedisStorage) MarkSeen(ctx context.Context, searchID, adID string) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key(searchID), adID).Result()
	if err != nil {
		return false, oops.With("search_id", searchID, "ad_id", adID, "context", "failed to mark ad seen").Wrap(err)
	}

	return added == 1, nil
}

func (s *RedisStorage) SeenCount(ctx context.Context, searchID string) (int, error) {
	count, err := s.client.SCard(ctx, s.key(searchID)).Result()
	if err != nil {
		return 0, oops.With("search_id", searchID, "context", "failed to count seen ads").Wrap(err)
	}

	return int(count), nil
}

func (s *RedisStorage) DeleteSearch(ctx context.Context, searchID string) error {
	if err := s.client.Del(ctx, s.key(searchID)).Err(); err != nil {
		return oops.With("search_id", searchID, "context", "failed to delete seen ledger").Wrap(err)
	}

	return nil
}

func (s *RedisStorage) key(searchID string) string {
	return "seen:" + searchID
}
