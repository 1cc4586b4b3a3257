package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"repairflow/internal/domain"
	"repairflow/internal/errors"
)

// RedisStateRepository keeps one JSON-encoded FormState per wizard session.
// Reads and writes both refresh the TTL, so an active session never expires.
type RedisStateRepository struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStateRepository(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStateRepository) Key(sessionID string) string {
	return fmt.Sprintf("%s:cart:%s", r.prefix, sessionID)
}

func (r *RedisStateRepository) Find(ctx context.Context, sessionID string) (*domain.FormState, error) {
	data, err := r.client.GetEx(ctx, r.Key(sessionID), r.ttl).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("cart for session %s not found", sessionID))
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}

	var state domain.FormState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return &state, nil
}

func (r *RedisStateRepository) Save(ctx context.Context, sessionID string, state domain.FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}

	if err := r.client.Set(ctx, r.Key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing cart: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}
	return nil
}
