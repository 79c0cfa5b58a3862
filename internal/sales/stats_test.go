package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/settings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubSource struct {
	calls int
	stats api.DailySalesStats
	err   error
}

func (s *stubSource) DailySalesStats(context.Context) (api.DailySalesStats, error) {
	s.calls++
	return s.stats, s.err
}

func setupStore(t *testing.T) *settings.Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := settings.NewStore(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	return store
}

func TestStats_CachesForTTL(t *testing.T) {
	store := setupStore(t)
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	src := &stubSource{stats: api.DailySalesStats{SalesCount: 3, TotalSales: decimal.NewFromInt(90)}}
	stats := newStats(src, store, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	got, cached, err := stats.Daily(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, got.SalesCount)

	now = now.Add(4 * time.Minute)
	got, cached, err = stats.Daily(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.True(t, got.TotalSales.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, 1, src.calls)

	now = now.Add(2 * time.Minute)
	_, cached, err = stats.Daily(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, src.calls)
}

func TestStats_Invalidate(t *testing.T) {
	store := setupStore(t)
	src := &stubSource{}
	stats := newStats(src, store, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	_, _, err := stats.Daily(ctx)
	require.NoError(t, err)
	require.NoError(t, stats.Invalidate(ctx))
	_, cached, err := stats.Daily(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, src.calls)
}

func TestStats_ErrorIsNotCached(t *testing.T) {
	store := setupStore(t)
	src := &stubSource{err: errors.New("boom")}
	stats := newStats(src, store, 5*time.Minute, zaptest.NewLogger(t))

	_, _, err := stats.Daily(context.Background())
	assert.Error(t, err)
	_, ok, err := settings.Get(context.Background(), store, stats.key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]api.Sale{
		{PaymentMethod: api.PaymentCash, Total: decimal.RequireFromString("10.10")},
		{PaymentMethod: api.PaymentPix, Total: decimal.RequireFromString("0.20")},
		{PaymentMethod: api.PaymentCash, Total: decimal.RequireFromString("0.05")},
	})
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "10.35", sum.Total.StringFixed(2))
	assert.Equal(t, "10.15", sum.ByMethod.Cash.StringFixed(2))
	assert.Equal(t, "0.20", sum.ByMethod.Pix.StringFixed(2))
}
