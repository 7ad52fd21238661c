package matches

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// resultsCache keeps each event's released result set in Redis so the
// member-facing read path skips Postgres on repeat hits. Every method
// tolerates a nil client; a cache miss or Redis error falls through to
// the repository.
type resultsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newResultsCache(client *redis.Client, ttl time.Duration) *resultsCache {
	return &resultsCache{client: client, ttl: ttl}
}

func (c *resultsCache) key(eventID int64) string {
	return fmt.Sprintf("match_results:%d", eventID)
}

func (c *resultsCache) Get(ctx context.Context, eventID int64) ([]*MatchResult, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(eventID)).Result()
	if err != nil {
		return nil, false
	}
	var results []*MatchResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *resultsCache) Set(ctx context.Context, eventID int64, results []*MatchResult) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(eventID), data, c.ttl)
}

func (c *resultsCache) Invalidate(ctx context.Context, eventID int64) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, c.key(eventID))
}
