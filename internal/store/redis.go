package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	"github.com/go-redis/redis"
)

const (
	counterKey   = "boc_submission_counter"
	recordPrefix = "boc_submission:"
)

var _ SubmissionStore = (*RedisStore)(nil)

// RedisStore keeps submission records as JSON strings with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NextID generates a unique submission ID using Redis INCR.
func (s *RedisStore) NextID(ctx context.Context, appName string) (string, error) {
	n, err := s.client.WithContext(ctx).Incr(counterKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to increment submission counter in Redis: %w", err)
	}
	return formatID(appName, n), nil
}

func (s *RedisStore) Save(ctx context.Context, sub *domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to serialize submission %s: %w", sub.Id, err)
	}
	if err := s.client.WithContext(ctx).Set(recordPrefix+sub.Id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save submission %s: %w", sub.Id, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Submission, error) {
	data, err := s.client.WithContext(ctx).Get(recordPrefix + id).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %s: %w", id, err)
	}

	sub := &domain.Submission{}
	if err := json.Unmarshal(data, sub); err != nil {
		return nil, fmt.Errorf("failed to decode submission %s: %w", id, err)
	}
	return sub, nil
}

func formatID(appName string, n int64) string {
	return fmt.Sprintf("%s-%d", appName, n)
}
