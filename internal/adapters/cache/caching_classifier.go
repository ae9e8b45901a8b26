package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/mailrisk/analyzer/internal/core"
	"go.uber.org/zap"
)

// CachingClassifier wraps a TextClassifier with a score cache. Repeated
// classification of identical text skips the backend entirely.
type CachingClassifier struct {
	inner  core.TextClassifier
	cache  core.ScoreCache
	model  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingClassifier creates a caching decorator around a classifier.
// The model name is part of the cache key so different backends and
// field roles never share entries.
func NewCachingClassifier(
	inner core.TextClassifier,
	cache core.ScoreCache,
	model string,
	ttl time.Duration,
	logger *zap.Logger,
) *CachingClassifier {
	return &CachingClassifier{
		inner:  inner,
		cache:  cache,
		model:  model,
		ttl:    ttl,
		logger: logger,
	}
}

// Classify implements core.TextClassifier
func (c *CachingClassifier) Classify(ctx context.Context, text string) (float64, error) {
	key := cacheKey(c.model, text)

	if entry, err := c.cache.Get(ctx, key); err == nil {
		c.logger.Debug("Classification cache hit",
			zap.String("model", c.model),
			zap.Float64("score", entry.Score))
		return entry.Score, nil
	}

	score, err := c.inner.Classify(ctx, text)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	entry := &core.CacheEntry{
		Key:       key,
		Model:     c.model,
		Score:     score,
		LastSeen:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.cache.Set(ctx, entry); err != nil {
		// A write failure only costs a future cache hit
		c.logger.Warn("Failed to store classification score in cache",
			zap.String("model", c.model),
			zap.Error(err))
	}

	return score, nil
}

// cacheKey digests the model name and text so arbitrarily large bodies
// map to fixed-size keys
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return hex.EncodeToString(sum[:])
}
