package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/adpulse/internal/domain"
)

// ResultCache keeps the latest classification per entity in Redis so the
// API can answer reads without touching Postgres. The database copy stays
// authoritative; a cache miss falls through to it.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache wraps an existing Redis client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func resultKey(clientID string, level domain.EntityLevel, entityID string) string {
	return fmt.Sprintf("adpulse:classification:%s:%s:%s", clientID, level, entityID)
}

// Put stores one classification record.
func (rc *ResultCache) Put(ctx context.Context, c domain.Classification) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal classification: %w", err)
	}
	if err := rc.client.Set(ctx, resultKey(c.ClientID, c.Level, c.EntityID), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("cache classification: %w", err)
	}
	return nil
}

// PutBatch stores a full run's records in one pipeline round trip.
func (rc *ResultCache) PutBatch(ctx context.Context, batch []domain.Classification) error {
	pipe := rc.client.Pipeline()
	for _, c := range batch {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal classification %s: %w", c.EntityID, err)
		}
		pipe.Set(ctx, resultKey(c.ClientID, c.Level, c.EntityID), data, rc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache batch: %w", err)
	}
	return nil
}

// Get returns the cached classification, (nil, nil) on a miss.
func (rc *ResultCache) Get(ctx context.Context, clientID string, level domain.EntityLevel, entityID string) (*domain.Classification, error) {
	data, err := rc.client.Get(ctx, resultKey(clientID, level, entityID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read classification cache: %w", err)
	}
	var c domain.Classification
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cached classification: %w", err)
	}
	return &c, nil
}
