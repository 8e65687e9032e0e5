package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
)

const (
	// Redis key holding the last applied plan as a hash.
	lastDigestKey = "cpi:linkage:digest:last"

	fieldDigest     = "digest"
	fieldRunID      = "run_id"
	fieldRecordedAt = "recorded_at"
)

// RedisStore keeps the last plan digest in a Redis hash so every runner
// sharing the participant database sees the same value.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey overrides the hash key, for running several pipelines against one Redis.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedis constructs a Redis-backed digest store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: lastDigestKey}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Last returns the most recent record or sentinel.ErrNotFound.
func (s *RedisStore) Last(ctx context.Context) (Record, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(values) == 0) {
		return Record{}, fmt.Errorf("last digest: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("read last digest: %w", err)
	}

	rec := Record{Digest: values[fieldDigest], RunID: values[fieldRunID]}
	if raw := values[fieldRecordedAt]; raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Record{}, fmt.Errorf("parse digest timestamp: %w", err)
		}
		rec.RecordedAt = at
	}
	return rec, nil
}

// Record replaces the stored digest in one round trip.
func (s *RedisStore) Record(ctx context.Context, rec Record) error {
	if rec.Digest == "" {
		return fmt.Errorf("record digest: digest is required")
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			fieldDigest, rec.Digest,
			fieldRunID, rec.RunID,
			fieldRecordedAt, rec.RecordedAt.UTC().Format(time.RFC3339Nano),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record digest: %w", err)
	}
	return nil
}
