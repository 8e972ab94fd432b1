package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/tum-registrar/internal/dto"
)

// RedisStateRepository keeps the snapshot as one JSON value under a fixed key.
type RedisStateRepository struct {
	client redis.Cmdable
	key    string
}

// NewRedisStateRepository constructs a RedisStateRepository.
func NewRedisStateRepository(client redis.Cmdable, key string) *RedisStateRepository {
	if key == "" {
		key = "registrar:state"
	}
	return &RedisStateRepository{client: client, key: key}
}

// Load fetches and decodes the snapshot.
func (r *RedisStateRepository) Load(ctx context.Context) (*dto.StateDocument, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var doc dto.StateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", r.key, err)
	}
	return &doc, nil
}

// Save overwrites the key with the encoded snapshot. The value never expires.
func (r *RedisStateRepository) Save(ctx context.Context, doc *dto.StateDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.client.Set(ctx, r.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
