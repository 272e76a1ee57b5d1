package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicaldss/trialscreen/internal/hashutil"
	"github.com/clinicaldss/trialscreen/internal/screening"
)

// VerdictCache stores screening verdicts keyed by content hash so repeat
// runs over unchanged patients and criteria skip the LLM call.
type VerdictCache interface {
	Get(ctx context.Context, key string) (screening.Verdict, bool, error)
	Set(ctx context.Context, key string, verdict screening.Verdict) error
	Close() error
}

// Key derives the cache key from the exact texts that shape the prompt.
// Editing a trial document or a patient row invalidates its cached verdicts
// without any bookkeeping.
func Key(recordText, criteriaText string) string {
	return hashutil.HashStrings(recordText, criteriaText)
}

type redisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisVerdictCache(addr, password string, db int, ttl time.Duration, prefix string) (VerdictCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 240 * time.Hour
	}
	if prefix == "" {
		prefix = "screen_verdict"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisVerdictCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisVerdictCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisVerdictCache) Get(ctx context.Context, key string) (screening.Verdict, bool, error) {
	if c == nil || c.client == nil {
		return screening.Verdict{}, false, nil
	}
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return screening.Verdict{}, false, nil
	}
	if err != nil {
		return screening.Verdict{}, false, err
	}
	var v screening.Verdict
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		return screening.Verdict{}, false, fmt.Errorf("decode cached verdict: %w", err)
	}
	return v, true, nil
}

func (c *redisVerdictCache) Set(ctx context.Context, key string, verdict screening.Verdict) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

func (c *redisVerdictCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
