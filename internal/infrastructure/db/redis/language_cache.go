package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codetyper/codetyper-api/internal/api/metrics"
	"github.com/codetyper/codetyper-api/internal/core/domain"
)

const (
	languageCacheKey      = "codetyper:languages:all"
	languageGenerationKey = "codetyper:languages:generation"
	defaultLanguageTTL    = 10 * time.Minute
)

var errStaleGeneration = errors.New("language cache generation moved on")

// LanguageCache stores the full language catalogue as one JSON value next to a
// generation counter. Invalidate bumps the counter; Set writes under WATCH so a
// catalogue loaded before an invalidation is never stored after it.
type LanguageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLanguageCache wraps client. A non-positive ttl falls back to the default.
func NewLanguageCache(client *redis.Client, ttl time.Duration) *LanguageCache {
	if ttl <= 0 {
		ttl = defaultLanguageTTL
	}
	return &LanguageCache{client: client, ttl: ttl}
}

// Get returns the cached catalogue and the current generation. A miss is
// (nil, gen, false, nil).
func (c *LanguageCache) Get(ctx context.Context) ([]domain.Language, int64, bool, error) {
	vals, err := c.client.MGet(ctx, languageCacheKey, languageGenerationKey).Result()
	if err != nil {
		metrics.LanguageCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("language cache get: %w", err)
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		metrics.LanguageCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		metrics.LanguageCacheTotal.WithLabelValues("miss").Inc()
		return nil, gen, false, nil
	}
	langs, err := decodeLanguages([]byte(raw))
	if err != nil {
		metrics.LanguageCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, err
	}
	metrics.LanguageCacheTotal.WithLabelValues("hit").Inc()
	return langs, gen, true, nil
}

// Set stores the catalogue if the generation is still gen. It reports false
// when an invalidation got in first.
func (c *LanguageCache) Set(ctx context.Context, gen int64, langs []domain.Language) (bool, error) {
	raw, err := encodeLanguages(langs)
	if err != nil {
		return false, err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		var current any
		switch v, err := tx.Get(ctx, languageGenerationKey).Result(); {
		case err == nil:
			current = v
		case !errors.Is(err, redis.Nil):
			return err
		}
		cur, err := parseGeneration(current)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, languageCacheKey, raw, c.ttl)
			return nil
		})
		return err
	}, languageGenerationKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		metrics.LanguageCacheTotal.WithLabelValues("stale").Inc()
		return false, nil
	default:
		return false, fmt.Errorf("language cache set: %w", err)
	}
}

// Invalidate drops the cached catalogue and advances the generation.
func (c *LanguageCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, languageGenerationKey)
		pipe.Del(ctx, languageCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("language cache invalidate: %w", err)
	}
	return nil
}

// parseGeneration reads the counter as returned by GET or MGET. A missing
// counter is generation zero.
func parseGeneration(v any) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("language cache generation %q: %w", g, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("language cache generation: unexpected %T", v)
	}
}

func encodeLanguages(langs []domain.Language) ([]byte, error) {
	if langs == nil {
		langs = []domain.Language{}
	}
	raw, err := json.Marshal(langs)
	if err != nil {
		return nil, fmt.Errorf("language cache encode: %w", err)
	}
	return raw, nil
}

func decodeLanguages(raw []byte) ([]domain.Language, error) {
	var langs []domain.Language
	if err := json.Unmarshal(raw, &langs); err != nil {
		return nil, fmt.Errorf("language cache decode: %w", err)
	}
	return langs, nil
}
