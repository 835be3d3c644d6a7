// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"blogapi/internal/models"
)

const (
	// categoriesKey holds the JSON-encoded category list.
	categoriesKey = "blogapi:categories:all"
	// generationKey is bumped by every Invalidate. A list read from the
	// database is only stored if the generation has not moved since.
	generationKey = "blogapi:categories:gen"

	// DefaultTTL bounds how stale the list can get if an invalidation is lost.
	DefaultTTL = 5 * time.Minute
)

// Categories caches the full category list in Valkey. Cache failures are
// logged and treated as misses; the database stays the source of truth.
type Categories struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategories returns a category cache backed by client.
func NewCategories(client *redis.Client, ttl time.Duration) *Categories {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Categories{client: client, ttl: ttl}
}

// Get returns the cached list and true on a hit. On a miss it returns the
// current generation for a later Set, or -1 when Valkey could not be read.
func (c *Categories) Get(ctx context.Context) ([]models.Category, int64, bool) {
	vals, err := c.client.MGet(ctx, categoriesKey, generationKey).Result()
	if err != nil {
		slog.Warn("category cache get failed", "error", err)
		return nil, -1, false
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		slog.Warn("category cache generation corrupt", "error", err)
		return nil, -1, false
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var list []models.Category
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		slog.Warn("category cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, -1, false
	}
	slog.Debug("category cache hit", "count", len(list))
	return list, gen, true
}

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}

// Set stores list with the configured TTL, but only while the generation
// is still gen. A concurrent Invalidate makes the write a no-op.
func (c *Categories) Set(ctx context.Context, gen int64, list []models.Category) {
	if gen < 0 {
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		slog.Warn("category cache encode failed", "error", err)
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := parseGenerationCmd(tx.Get(ctx, generationKey))
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, categoriesKey, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		slog.Debug("category cache set skipped, list changed meanwhile")
	default:
		slog.Warn("category cache set failed", "error", err)
	}
}

var errStaleGeneration = errors.New("category cache generation moved")

func parseGenerationCmd(cmd *redis.StringCmd) (int64, error) {
	n, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Invalidate drops the cached list and bumps the generation so that any
// list read before this call is never stored.
func (c *Categories) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, categoriesKey)
		return nil
	})
	if err != nil {
		slog.Warn("category cache invalidate failed", "error", err)
	}
}
