package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerdictLRUGetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewVerdictLRU(4, time.Minute)

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	cache.Set(ctx, "a", true)
	cache.Set(ctx, "b", false)

	verdict, ok := cache.Get(ctx, "a")
	assert.True(t, ok)
	assert.True(t, verdict)

	verdict, ok = cache.Get(ctx, "b")
	assert.True(t, ok)
	assert.False(t, verdict)
}

func TestVerdictLRUOverwrite(t *testing.T) {
	ctx := context.Background()
	cache := NewVerdictLRU(4, time.Minute)

	cache.Set(ctx, "a", false)
	cache.Set(ctx, "a", true)

	verdict, ok := cache.Get(ctx, "a")
	assert.True(t, ok)
	assert.True(t, verdict)
}

func TestVerdictLRUEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewVerdictLRU(2, time.Minute)

	cache.Set(ctx, "a", true)
	cache.Set(ctx, "b", true)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.Get(ctx, "a")
	assert.True(t, ok)

	cache.Set(ctx, "c", true)

	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = cache.Get(ctx, "c")
	assert.True(t, ok)
}

func TestVerdictLRUExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewVerdictLRU(4, -time.Second)

	cache.Set(ctx, "a", true)

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
}
