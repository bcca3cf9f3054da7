package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	hashKeyPrefix  = "qhash:"
	paperKeyPrefix = "paper:"
)

// HashCache remembers accepted question hashes across runs.
type HashCache struct {
	rdb goredis.UniversalClient
}

func NewHashCache(rdb goredis.UniversalClient) *HashCache {
	return &HashCache{rdb: rdb}
}

func (c *HashCache) Exists(ctx context.Context, hash string) (bool, error) {
	n, err := c.rdb.Exists(ctx, hashKeyPrefix+hash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *HashCache) Remember(ctx context.Context, hashes []string, ttl time.Duration) error {
	if len(hashes) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for _, h := range hashes {
			p.Set(ctx, hashKeyPrefix+h, "1", ttl)
		}
		return nil
	})
	return err
}

// PaperCache holds the JSON read model of a day's paper.
type PaperCache struct {
	rdb goredis.UniversalClient
}

func NewPaperCache(rdb goredis.UniversalClient) *PaperCache {
	return &PaperCache{rdb: rdb}
}

func PaperKey(date string) string { return paperKeyPrefix + date }

// Get decodes the cached payload into dst and reports whether it was present.
func (c *PaperCache) Get(ctx context.Context, date string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, PaperKey(date)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *PaperCache) Set(ctx context.Context, date string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, PaperKey(date), raw, ttl).Err()
}

func (c *PaperCache) Invalidate(ctx context.Context, date string) error {
	return c.rdb.Del(ctx, PaperKey(date)).Err()
}
