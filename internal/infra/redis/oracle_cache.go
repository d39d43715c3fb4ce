package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"advent-quiz-service/internal/validation"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// OracleCache memoizes oracle replies per prompt so the same answer is judged once per TTL.
// Replies are stored as: SET oracle:{model}:{sha256(prompt)} {raw reply} EX ttl
// Failed calls and unparseable replies are never cached.
// Concurrent callers for one prompt share a single upstream call. That call runs detached
// from any one caller and is bounded by the call timeout, so a caller that gives up does
// not fail the others.
type OracleCache struct {
	client  *redis.Client
	next    validation.Oracle
	model   string
	ttl     time.Duration
	timeout time.Duration
	sf      singleflight.Group
}

// NewOracleCache wraps next with a Redis cache. Shared upstream calls are bounded by
// validation.DefaultOracleTimeout unless WithCallTimeout says otherwise.
func NewOracleCache(client *redis.Client, next validation.Oracle, model string, ttl time.Duration) *OracleCache {
	return &OracleCache{client: client, next: next, model: model, ttl: ttl, timeout: validation.DefaultOracleTimeout}
}

// WithCallTimeout bounds the shared upstream call; non-positive values are ignored.
func (c *OracleCache) WithCallTimeout(timeout time.Duration) *OracleCache {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

func (c *OracleCache) Judge(ctx context.Context, prompt string) (string, error) {
	key := c.key(prompt)
	if raw, ok := c.lookup(ctx, key); ok {
		return raw, nil
	}

	ch := c.sf.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		if raw, ok := c.lookup(callCtx, key); ok {
			return raw, nil
		}
		raw, err := c.next.Judge(callCtx, prompt)
		if err != nil {
			return "", err
		}
		if _, err := validation.ParseJudgement(raw); err != nil {
			return raw, nil
		}
		if err := c.client.Set(callCtx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("cache oracle reply: %v", err)
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *OracleCache) lookup(ctx context.Context, key string) (string, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read oracle cache: %v", err)
		}
		return "", false
	}
	return raw, true
}

func (c *OracleCache) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "oracle:" + c.model + ":" + hex.EncodeToString(sum[:])
}
