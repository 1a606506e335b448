package lexicon

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/pipeline"
)

const synonymKeyPrefix = "syn:"

// Cache is the subset of pkg/redis.Client used for memoising lookups.
// Get must return an error for a missing key.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedSynonyms memoises a SynonymSource in a shared cache. Concurrent
// lookups of the same token from different workers collapse into one call.
// Cache errors degrade to a direct lookup.
type CachedSynonyms struct {
	next   pipeline.SynonymSource
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewCachedSynonyms(next pipeline.SynonymSource, cache Cache, ttl time.Duration) *CachedSynonyms {
	return &CachedSynonyms{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: slog.Default().With("component", "synonym-cache"),
	}
}

func (c *CachedSynonyms) Lookup(ctx context.Context, token string) ([]string, error) {
	token = strings.ToLower(token)
	key := synonymKeyPrefix + token
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if raw, err := c.cache.Get(ctx, key); err == nil {
			var syns []string
			if err := json.Unmarshal([]byte(raw), &syns); err == nil {
				return syns, nil
			}
			c.logger.Warn("discarding malformed cache entry", "key", key)
		}
		syns, err := c.next.Lookup(ctx, token)
		if err != nil {
			return nil, err
		}
		if syns == nil {
			syns = []string{}
		}
		data, _ := json.Marshal(syns)
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Debug("synonym cache write failed", "key", key, "error", err)
		}
		return syns, nil
	})
	if err != nil {
		return nil, err
	}
	syns := v.([]string)
	if len(syns) == 0 {
		return nil, nil
	}
	return append([]string(nil), syns...), nil
}
