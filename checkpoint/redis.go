// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"novapay/assistant/conversation"
)

// DefaultTTL expires idle sessions after a day.
const DefaultTTL = 24 * time.Hour

// RedisStore persists history in Redis, one JSON value per session key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures the Redis checkpoint store.
type RedisConfig struct {
	Addr     string        // Required: host:port
	Password string        // Optional
	DB       int           // Optional
	TTL      time.Duration // Optional: session expiry (default: 24h)
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("checkpoint: redis address is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("checkpoint: redis ping: %w", err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func sessionKey(sessionID string) string {
	return "assistant:session:" + sessionID
}

// Load returns the stored history for sessionID, nil when none exists.
func (r *RedisStore) Load(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", sessionID, err)
	}

	var msgs []conversation.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", sessionID, err)
	}
	return msgs, nil
}

// Save replaces the stored history for sessionID and refreshes its TTL.
func (r *RedisStore) Save(ctx context.Context, sessionID string, msgs []conversation.Message) error {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("checkpoint: encode %s: %w", sessionID, err)
	}
	if err := r.client.Set(ctx, sessionKey(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", sessionID, err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
