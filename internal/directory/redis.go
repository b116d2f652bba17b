package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v9"
)

const (
	matchKeyPrefix = "match:"
	matchIndexKey  = "matches"

	// summaryTTL keeps crashed servers from leaving stale listings behind;
	// Update refreshes it.
	summaryTTL = 2 * time.Minute
)

// Redis lists matches in a shared redis instance: one JSON value per match
// plus a set index, both expiring unless refreshed.
type Redis struct {
	client *redis.Client
}

// NewRedis builds a directory over an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Register writes the initial summary and indexes the match id.
func (r *Redis) Register(ctx context.Context, s Summary) error {
	return r.Update(ctx, s)
}

// Update overwrites the summary and refreshes its TTL.
func (r *Redis) Update(ctx context.Context, s Summary) error {
	s.UpdatedAt = time.Now().UnixMilli()
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, matchKeyPrefix+s.ID, data, summaryTTL)
	pipe.SAdd(ctx, matchIndexKey, s.ID)
	pipe.Expire(ctx, matchIndexKey, summaryTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Remove deletes the summary and unindexes the match.
func (r *Redis) Remove(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, matchKeyPrefix+id)
	pipe.SRem(ctx, matchIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}
