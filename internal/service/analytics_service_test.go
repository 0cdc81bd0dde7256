package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/model"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/internal/testutil"
)

func TestAnalyticsService_UniqueClicksOnDate(t *testing.T) {
	db := testutil.OpenDB(t)
	clicks := repository.NewClickRepository(db)
	svc := NewAnalyticsService(clicks, repository.NewConversionRepository(db), time.UTC)
	ctx := context.Background()

	day := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	addClick := func(linkID uint, ip string, at time.Time) {
		t.Helper()
		require.NoError(t, clicks.Create(ctx, &model.ClickEvent{LinkID: linkID, IPAddress: ip, Timestamp: at}))
	}

	total, err := svc.UniqueClicksOnDate(ctx, 1, "2026-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	addClick(1, "203.0.113.5", day)
	addClick(1, "203.0.113.5", day.Add(2*time.Hour))
	total, err = svc.UniqueClicksOnDate(ctx, 1, "2026-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	addClick(1, "198.51.100.7", day.Add(3*time.Hour))
	total, err = svc.UniqueClicksOnDate(ctx, 1, "2026-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 其他日期与其他短链不计入
	addClick(1, "192.0.2.9", day.AddDate(0, 0, 1))
	addClick(2, "192.0.2.10", day)
	total, err = svc.UniqueClicksOnDate(ctx, 1, "2026-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = svc.UniqueClicksOnDate(ctx, 1, "2026-05-11")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAnalyticsService_DayBoundaries(t *testing.T) {
	db := testutil.OpenDB(t)
	clicks := repository.NewClickRepository(db)
	svc := NewAnalyticsService(clicks, repository.NewConversionRepository(db), time.UTC)
	ctx := context.Background()

	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, clicks.Create(ctx, &model.ClickEvent{LinkID: 1, IPAddress: "a", Timestamp: start}))
	require.NoError(t, clicks.Create(ctx, &model.ClickEvent{LinkID: 1, IPAddress: "b", Timestamp: start.Add(24*time.Hour - time.Second)}))
	require.NoError(t, clicks.Create(ctx, &model.ClickEvent{LinkID: 1, IPAddress: "c", Timestamp: start.Add(24 * time.Hour)}))

	total, err := svc.UniqueClicksOnDate(ctx, 1, "2026-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestAnalyticsService_Timezone(t *testing.T) {
	db := testutil.OpenDB(t)
	clicks := repository.NewClickRepository(db)
	loc := time.FixedZone("UTC+8", 8*3600)
	svc := NewAnalyticsService(clicks, repository.NewConversionRepository(db), loc)
	ctx := context.Background()

	// 2026-05-09 20:00 UTC 即 UTC+8 的 2026-05-10 04:00
	require.NoError(t, clicks.Create(ctx, &model.ClickEvent{
		LinkID: 1, IPAddress: "a", Timestamp: time.Date(2026, 5, 9, 20, 0, 0, 0, time.UTC),
	}))

	total, err := svc.UniqueClicksOnDate(ctx, 1, "2026-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = svc.UniqueClicksOnDate(ctx, 1, "2026-05-09")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestAnalyticsService_InvalidDate(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewAnalyticsService(repository.NewClickRepository(db), repository.NewConversionRepository(db), nil)

	for _, date := range []string{"", "2026/05/10", "2026-13-01", "yesterday"} {
		_, err := svc.UniqueClicksOnDate(context.Background(), 1, date)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "date %q", date)
	}
}

func TestAnalyticsService_Today(t *testing.T) {
	svc := NewAnalyticsService(nil, nil, time.FixedZone("UTC-5", -5*3600))
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC) }

	assert.Equal(t, "2025-12-31", svc.Today())
}

func TestAnalyticsService_ConversionTotal(t *testing.T) {
	db := testutil.OpenDB(t)
	conversions := repository.NewConversionRepository(db)
	svc := NewAnalyticsService(repository.NewClickRepository(db), conversions, nil)
	ctx := context.Background()

	total, err := svc.ConversionTotal(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	total, err = svc.ConversionTotal(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	require.NoError(t, conversions.AddDelta(ctx, "aff-9", 12))
	total, err = svc.ConversionTotal(ctx, "aff-9")
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = LoadLocation("Not/AZone")
	assert.Error(t, err)
}
