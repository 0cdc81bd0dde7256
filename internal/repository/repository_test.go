package repository_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliatelink-go/internal/model"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/internal/testutil"
)

func TestLinkRepository_UniqueCodeConstraint(t *testing.T) {
	repo := repository.NewLinkRepository(testutil.OpenDB(t))
	ctx := context.Background()

	first := &model.AffiliateLink{TargetURL: "https://example.com/1", UniqueCode: "Abcdef12"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	dup := &model.AffiliateLink{TargetURL: "https://example.com/2", UniqueCode: "Abcdef12"}
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicateCode)

	exists, err := repo.ExistsByCode(ctx, "Abcdef12")
	require.NoError(t, err)
	assert.True(t, exists)

	// 短码区分大小写
	exists, err = repo.ExistsByCode(ctx, "ABCDEF12")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLinkRepository_Lookups(t *testing.T) {
	repo := repository.NewLinkRepository(testutil.OpenDB(t))
	ctx := context.Background()
	affiliate := "aff-7"

	for _, code := range []string{"CODE0001", "CODE0002"} {
		require.NoError(t, repo.Create(ctx, &model.AffiliateLink{TargetURL: "https://example.com/" + code, UniqueCode: code, AffiliateID: &affiliate}))
	}

	link, err := repo.GetByCode(ctx, "CODE0002")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com/CODE0002", link.TargetURL)
	assert.Equal(t, "aff-7", link.AffiliateIDValue())

	missing, err := repo.GetByCode(ctx, "NOPE0000")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := repo.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "CODE0002", byID.UniqueCode)

	missing, err = repo.GetByID(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "CODE0001", all[0].UniqueCode)
}

func TestClickRepository_CountDistinctIPs(t *testing.T) {
	repo := repository.NewClickRepository(testutil.OpenDB(t))
	ctx := context.Background()
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range []struct {
		ip string
		at time.Time
	}{
		{"1.1.1.1", day.Add(time.Hour)},
		{"1.1.1.1", day.Add(2 * time.Hour)},
		{"2.2.2.2", day.Add(3 * time.Hour)},
		{"3.3.3.3", day.Add(25 * time.Hour)},
	} {
		require.NoError(t, repo.Create(ctx, &model.ClickEvent{LinkID: 1, IPAddress: c.ip, Timestamp: c.at}))
	}

	total, err := repo.CountDistinctIPs(ctx, 1, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = repo.CountDistinctIPs(ctx, 2, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestClickRepository_AssignsTimestamp(t *testing.T) {
	repo := repository.NewClickRepository(testutil.OpenDB(t))
	click := &model.ClickEvent{LinkID: 1, IPAddress: "1.1.1.1"}

	before := time.Now().Add(-time.Second)
	require.NoError(t, repo.Create(context.Background(), click))
	assert.True(t, click.Timestamp.After(before))
	assert.Equal(t, time.UTC, click.Timestamp.Location())
}

func TestConversionRepository_AddDelta(t *testing.T) {
	repo := repository.NewConversionRepository(testutil.OpenDB(t))
	ctx := context.Background()

	none, err := repo.GetByAffiliateID(ctx, "aff-1")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.AddDelta(ctx, "aff-1", 50))
	require.NoError(t, repo.AddDelta(ctx, "aff-1", 10))

	total, err := repo.GetByAffiliateID(ctx, "aff-1")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, int64(60), total.TotalConversion)
}

func TestConversionRepository_AddDeltaRejectsOverflow(t *testing.T) {
	repo := repository.NewConversionRepository(testutil.OpenDB(t))
	ctx := context.Background()

	require.NoError(t, repo.AddDelta(ctx, "aff-max", math.MaxInt64-1))
	require.NoError(t, repo.AddDelta(ctx, "aff-max", 1))
	assert.ErrorIs(t, repo.AddDelta(ctx, "aff-max", 1), repository.ErrTotalOverflow)
	assert.ErrorIs(t, repo.AddDelta(ctx, "aff-max", math.MaxInt64), repository.ErrTotalOverflow)

	total, err := repo.GetByAffiliateID(ctx, "aff-max")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, int64(math.MaxInt64), total.TotalConversion)

	// 累计为上限时增量 0 仍然成功
	assert.NoError(t, repo.AddDelta(ctx, "aff-max", 0))
}

func TestConversionRepository_ConcurrentAddDelta(t *testing.T) {
	repo := repository.NewConversionRepository(testutil.OpenDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AddDelta(ctx, "aff-c", 5))
		}()
	}
	wg.Wait()

	total, err := repo.GetByAffiliateID(ctx, "aff-c")
	require.NoError(t, err)
	assert.Equal(t, int64(10), total.TotalConversion)
}
