package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// documentStore is the subset of pkg/redis.Client used for cart documents.
type documentStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisRepository keeps each cart as one JSON document with a sliding TTL.
type RedisRepository struct {
	store documentStore
	ttl   time.Duration
}

func NewRedisRepository(store documentStore, ttl time.Duration) (*RedisRepository, error) {
	if store == nil {
		return nil, errors.New("redis client required for cart repository")
	}
	return &RedisRepository{store: store, ttl: ttl}, nil
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*State, error) {
	raw, err := r.store.Get(ctx, r.store.CartKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart document: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode cart document: %w", err)
	}
	return &state, nil
}

// Save rewrites the document and refreshes its TTL.
func (r *RedisRepository) Save(ctx context.Context, sessionID string, state State) error {
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart document: %w", err)
	}
	if err := r.store.Set(ctx, r.store.CartKey(sessionID), payload, r.ttl); err != nil {
		return fmt.Errorf("write cart document: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.store.Del(ctx, r.store.CartKey(sessionID)); err != nil {
		return fmt.Errorf("delete cart document: %w", err)
	}
	return nil
}
