package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0unveiled/github-analyzer/internal/types"
)

func TestKeyIsStable(t *testing.T) {
	a := Key("octocat", "hello", 200)
	b := Key("octocat", "hello", 200)
	c := Key("octocat", "hello", 500)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "analysis:")
}

func TestSetAndGet(t *testing.T) {
	cache := New(time.Minute, nil)
	ctx := context.Background()
	key := Key("octocat", "hello", 200)

	analysis := &types.RepositoryAnalysis{
		AnalysisID:   "abc-123",
		OverallScore: 82.5,
		Status:       types.StatusCompleted,
	}
	cache.Set(ctx, key, analysis)

	got, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "abc-123", got.AnalysisID)
	assert.Equal(t, 82.5, got.OverallScore)

	_, ok = cache.Get(ctx, Key("octocat", "other", 200))
	assert.False(t, ok)
}

func TestExpiration(t *testing.T) {
	cache := New(10*time.Millisecond, nil)
	ctx := context.Background()
	key := Key("octocat", "hello", 200)

	cache.Set(ctx, key, &types.RepositoryAnalysis{AnalysisID: "x"})

	_, ok := cache.Get(ctx, key)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = cache.Get(ctx, key)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	cache := New(time.Minute, nil)
	ctx := context.Background()
	key := Key("octocat", "hello", 200)

	cache.Set(ctx, key, &types.RepositoryAnalysis{AnalysisID: "x"})
	cache.Delete(ctx, key)

	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestStats(t *testing.T) {
	cache := New(time.Minute, nil)
	ctx := context.Background()
	key := Key("octocat", "hello", 200)

	cache.Set(ctx, key, &types.RepositoryAnalysis{AnalysisID: "x"})
	cache.Get(ctx, key)
	cache.Get(ctx, "missing")

	stats := cache.Stats()
	assert.Equal(t, 1, stats["total_items"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, false, stats["redis_enabled"])
}
