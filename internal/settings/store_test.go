package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type filterPrefs struct {
	Search string `json:"search"`
	Page   int    `json:"page"`
}

func setupStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	store, err := NewStore(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	return store
}

func TestStore_SetGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := Key[filterPrefs]{Name: "products.filter"}

	_, ok, err := Get(ctx, store, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Set(ctx, store, key, filterPrefs{Search: "arroz", Page: 2}))
	require.NoError(t, Set(ctx, store, key, filterPrefs{Search: "feijão", Page: 3}))

	got, ok, err := Get(ctx, store, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filterPrefs{Search: "feijão", Page: 3}, got)

	require.NoError(t, Delete(ctx, store, key))
	_, ok, err = Get(ctx, store, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	key := Key[int]{Name: "sales.stats", TTL: 5 * time.Minute}
	require.NoError(t, Set(ctx, store, key, 42))

	meta, ok, err := store.Meta(ctx, key.Name)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, meta.ExpiresAt)
	assert.True(t, meta.ExpiresAt.Equal(now.Add(5*time.Minute)))

	now = now.Add(4 * time.Minute)
	v, ok, err := Get(ctx, store, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	now = now.Add(time.Minute)
	_, ok, err = Get(ctx, store, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Meta(ctx, key.Name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PurgeExpired(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	require.NoError(t, Set(ctx, store, Key[string]{Name: "a", TTL: time.Minute}, "x"))
	require.NoError(t, Set(ctx, store, Key[string]{Name: "b"}, "y"))

	now = now.Add(2 * time.Minute)
	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	v, ok, err := Get(ctx, store, Key[string]{Name: "b"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestStore_MissingKeyIsQuiet(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	store, err := NewStore(db, zap.New(core))
	require.NoError(t, err)

	_, ok, err := Get(context.Background(), store, Key[string]{Name: "auth.token"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, logs.FilterMessageSnippet("record not found").All())
}
