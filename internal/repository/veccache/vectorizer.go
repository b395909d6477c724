// Package veccache caches token vectors in a key-value store so that
// repeated ranking passes do not re-fetch the same tokens from a remote
// vector provider.
package veccache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/swapmeet-io/swapmeet/internal/db"
	"github.com/swapmeet-io/swapmeet/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "vec_cache:"

// store is the consumer interface for the vector cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedVectorizer caches token vectors in a key-value store.
type CachedVectorizer struct {
	inner      domain.Vectorizer
	store      store
	model      string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. The model name is part of the cache
// key so switching models never serves stale vectors. cacheTotal is a
// counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Vectorizer,
	s store,
	model string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedVectorizer {
	return &CachedVectorizer{
		inner:      inner,
		store:      s,
		model:      model,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Vector returns a cached token vector or calls the inner vectorizer.
func (c *CachedVectorizer) Vector(ctx context.Context, token string) ([]float32, error) {
	key := c.cacheKey(token)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return vec, nil
	}

	c.incCache("miss")

	vec, err := c.inner.Vector(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("vectorize token: %w", err)
	}

	c.putToCache(ctx, key, vec)
	return vec, nil
}

// Dimensions returns the inner vectorizer's vector width.
func (c *CachedVectorizer) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedVectorizer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedVectorizer) cacheKey(token string) string {
	h := sha256.Sum256([]byte(c.model + ":" + token))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedVectorizer) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached vector", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached vector", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return vec, true
}

func (c *CachedVectorizer) putToCache(ctx context.Context, key string, vec []float32) {
	data := vectorToCacheBytes(vec)
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("Failed to cache vector", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
