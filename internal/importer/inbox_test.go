package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/internal/service"
	"affiliatelink-go/internal/testutil"
)

func newTestInbox(t *testing.T) (*InboxJob, repository.ConversionRepository, string, string) {
	t.Helper()
	conversions := repository.NewConversionRepository(testutil.OpenDB(t))
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	processed := filepath.Join(root, "processed")
	job := NewInboxJob(service.NewConversionMerger(conversions), config.ImportConfig{
		InboxDir:     inbox,
		ProcessedDir: processed,
	})
	job.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	return job, conversions, inbox, processed
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestInboxJob_ImportsOnce(t *testing.T) {
	job, conversions, inbox, processed := newTestInbox(t)
	ctx := context.Background()
	writeFile(t, inbox, "a.csv", "affiliate_id,total_conversion\naff-1,50\naff-2,x\n")
	writeFile(t, inbox, "b.csv", "affiliate_id,delta\naff-1,10\n")
	writeFile(t, inbox, "notes.txt", "ignored")

	results, err := job.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Applied)
	assert.Equal(t, 1, results[0].Skipped)

	total, err := conversions.GetByAffiliateID(ctx, "aff-1")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, int64(60), total.TotalConversion)

	assert.FileExists(t, filepath.Join(processed, "20260701T120000_a.csv"))
	assert.FileExists(t, filepath.Join(processed, "20260701T120000_b.csv"))
	assert.FileExists(t, filepath.Join(inbox, "notes.txt"))

	results, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)

	total, err = conversions.GetByAffiliateID(ctx, "aff-1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), total.TotalConversion)
}

func TestInboxJob_MovesUnparseableFileAside(t *testing.T) {
	job, _, inbox, processed := newTestInbox(t)
	writeFile(t, inbox, "bad.csv", "id,count\n1,2\n")

	results, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.FileExists(t, filepath.Join(processed, "20260701T120000_bad.csv.failed"))
	assert.NoFileExists(t, filepath.Join(inbox, "bad.csv"))
}

func TestInboxJob_Schedule(t *testing.T) {
	job, _, _, _ := newTestInbox(t)
	c := cron.New(cron.WithLogger(NewCronLogger(zap.NewNop())))

	id, err := job.Schedule(c, "*/10 * * * *")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = job.Schedule(c, "not a schedule")
	assert.Error(t, err)
}
