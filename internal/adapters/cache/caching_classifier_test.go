package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mailrisk/analyzer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingClassifier struct {
	score float64
	err   error
	calls int
}

func (c *countingClassifier) Classify(ctx context.Context, text string) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.score, nil
}

func TestCachingClassifierHitSkipsBackend(t *testing.T) {
	logger := zap.NewNop()
	memCache := NewMemoryCache(logger, time.Hour)
	defer memCache.Stop()

	inner := &countingClassifier{score: 0.8}
	classifier := NewCachingClassifier(inner, memCache, "openai:body", time.Hour, logger)

	score, err := classifier.Classify(context.Background(), "claim your prize now")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score)
	assert.Equal(t, 1, inner.calls)

	score, err = classifier.Classify(context.Background(), "claim your prize now")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score)
	assert.Equal(t, 1, inner.calls, "second call should be served from cache")
}

func TestCachingClassifierDistinctModelsDoNotCollide(t *testing.T) {
	logger := zap.NewNop()
	memCache := NewMemoryCache(logger, time.Hour)
	defer memCache.Stop()

	body := NewCachingClassifier(&countingClassifier{score: 0.9}, memCache, "openai:body", time.Hour, logger)
	subject := NewCachingClassifier(&countingClassifier{score: 0.1}, memCache, "openai:subject", time.Hour, logger)

	bodyScore, err := body.Classify(context.Background(), "same text")
	require.NoError(t, err)
	subjectScore, err := subject.Classify(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, 0.9, bodyScore)
	assert.Equal(t, 0.1, subjectScore)
}

func TestCachingClassifierBackendErrorNotCached(t *testing.T) {
	logger := zap.NewNop()
	memCache := NewMemoryCache(logger, time.Hour)
	defer memCache.Stop()

	inner := &countingClassifier{err: errors.New("backend down")}
	classifier := NewCachingClassifier(inner, memCache, "openai:body", time.Hour, logger)

	_, err := classifier.Classify(context.Background(), "some text")
	require.Error(t, err)

	inner.err = nil
	inner.score = 0.4
	score, err := classifier.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, 0.4, score)
	assert.Equal(t, 2, inner.calls)
}

func TestMemoryCacheExpiry(t *testing.T) {
	logger := zap.NewNop()
	memCache := NewMemoryCache(logger, time.Hour)
	defer memCache.Stop()

	now := time.Now()
	entry := &core.CacheEntry{
		Key:       "k1",
		Model:     "m",
		Score:     0.5,
		LastSeen:  now,
		ExpiresAt: now.Add(-time.Minute),
	}
	require.NoError(t, memCache.Set(context.Background(), entry))

	_, err := memCache.Get(context.Background(), "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanupRemovesExpired(t *testing.T) {
	logger := zap.NewNop()
	memCache := NewMemoryCache(logger, time.Hour)
	defer memCache.Stop()

	now := time.Now()
	require.NoError(t, memCache.Set(context.Background(), &core.CacheEntry{
		Key: "live", ExpiresAt: now.Add(time.Hour), LastSeen: now,
	}))
	require.NoError(t, memCache.Set(context.Background(), &core.CacheEntry{
		Key: "dead", ExpiresAt: now.Add(-time.Hour), LastSeen: now,
	}))

	require.NoError(t, memCache.Cleanup(context.Background()))

	_, err := memCache.Get(context.Background(), "live")
	assert.NoError(t, err)
	_, err = memCache.Get(context.Background(), "dead")
	assert.ErrorIs(t, err, ErrNotFound)
}
