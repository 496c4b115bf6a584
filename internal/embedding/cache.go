package embedding

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"ResuMatch/pkg/logger"
	"ResuMatch/pkg/util"
)

const cacheKeyPrefix = "emb:"

// localCacheCapacity bounds the in-process cache when Redis is not available.
const localCacheCapacity = 4096

// CachedModel wraps an Embedding and caches vectors by model and text.
// With a Redis client it shares the cache across instances, otherwise it
// keeps an in-process LRU. Cache failures are logged and treated as misses.
type CachedModel struct {
	inner Embedding
	model string
	rdb   *redis.Client
	local *util.LRUCache[string, []float32]
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedModel creates the caching decorator. rdb may be nil, in which
// case an in-process LRU backs the cache.
func NewCachedModel(inner Embedding, model string, rdb *redis.Client, ttl time.Duration, log *logger.Logger) (*CachedModel, error) {
	c := &CachedModel{
		inner: inner,
		model: model,
		rdb:   rdb,
		ttl:   ttl,
		log:   log,
	}
	if rdb == nil {
		local, err := util.NewWithConfig(util.CacheConfig[string, []float32]{
			Capacity: localCacheCapacity,
			TTL:      ttl,
		})
		if err != nil {
			return nil, err
		}
		c.local = local
	}
	return c, nil
}

// cacheKey derives a stable key from the model name and the text.
func (c *CachedModel) cacheKey(text string) string {
	sum := md5.Sum([]byte(c.model + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text, or generates and caches it.
func (c *CachedModel) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.lookup(ctx, text); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, text, vec)
	return vec, nil
}

// EmbedBatch resolves cached texts locally and only sends the misses to the
// underlying model. The result preserves the input order.
func (c *CachedModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if vec, ok := c.lookup(ctx, text); ok {
			result[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, errors.New("embedding batch size mismatch")
	}

	for j, vec := range vecs {
		result[missingIdx[j]] = vec
		c.store(ctx, missing[j], vec)
	}

	return result, nil
}

func (c *CachedModel) lookup(ctx context.Context, text string) ([]float32, bool) {
	key := c.cacheKey(text)

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.log.WithError(err).Warn("embedding cache read failed")
			}
			return nil, false
		}
		var vec []float32
		if err := json.Unmarshal(data, &vec); err != nil {
			c.log.WithError(err).Warn("embedding cache entry is corrupt")
			return nil, false
		}
		return vec, true
	}

	return c.local.Get(key)
}

func (c *CachedModel) store(ctx context.Context, text string, vec []float32) {
	key := c.cacheKey(text)

	if c.rdb != nil {
		data, err := json.Marshal(vec)
		if err != nil {
			c.log.WithError(err).Warn("failed to encode embedding for cache")
			return
		}
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.WithError(err).Warn("embedding cache write failed")
		}
		return
	}

	c.local.Put(key, vec, len(vec))
}

var _ Embedding = (*CachedModel)(nil)
