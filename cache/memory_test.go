package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok := store.Get(ctx, "/")
	assert.False(t, ok)

	store.Set(ctx, "/", []byte("home"), time.Minute)
	got, ok := store.Get(ctx, "/")
	require.True(t, ok)
	assert.Equal(t, []byte("home"), got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })
	store.Set(ctx, "/", []byte("home"), 20*time.Second)

	_, ok := store.Get(ctx, "/")
	assert.True(t, ok)

	store.SetClock(func() time.Time { return now.Add(21 * time.Second) })
	_, ok = store.Get(ctx, "/")
	assert.False(t, ok)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, "/", []byte("home"), time.Minute)
	store.Clear(ctx, "/")
	_, ok := store.Get(ctx, "/")
	assert.False(t, ok)
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	body := []byte("home")
	store.Set(ctx, "/", body, time.Minute)
	body[0] = 'x'

	got, ok := store.Get(ctx, "/")
	require.True(t, ok)
	assert.Equal(t, []byte("home"), got)
}
