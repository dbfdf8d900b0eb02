package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// BundleCache caches successful evidence bundles by question. Best-effort:
// implementations must never fail a retrieval.
type BundleCache interface {
	Get(ctx context.Context, question string) (*EvidenceBundle, bool)
	Set(ctx context.Context, question string, bundle *EvidenceBundle)
}

type RedisBundleCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisBundleCache(client *redis.Client, prefix string, ttl time.Duration) *RedisBundleCache {
	return &RedisBundleCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisBundleCache) key(question string) string {
	return c.prefix + strings.ToLower(strings.TrimSpace(question))
}

func (c *RedisBundleCache) Get(ctx context.Context, question string) (*EvidenceBundle, bool) {
	value, err := c.client.Get(ctx, c.key(question)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("Evidence cache read failed")
		}
		return nil, false
	}

	var bundle EvidenceBundle
	if err := json.Unmarshal([]byte(value), &bundle); err != nil {
		log.Warn().Err(err).Msg("Evidence cache entry corrupt, ignoring")
		return nil, false
	}

	return &bundle, true
}

func (c *RedisBundleCache) Set(ctx context.Context, question string, bundle *EvidenceBundle) {
	value, err := json.Marshal(bundle)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal evidence bundle for cache")
		return
	}

	if err := c.client.Set(ctx, c.key(question), value, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Evidence cache write failed")
	}
}
