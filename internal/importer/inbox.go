package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/service"
	"affiliatelink-go/pkg/logging"
)

// InboxJob 定时扫描收件目录中的 CSV 并合并转化。
// 处理后的文件移入已处理目录，同一文件只导入一次。
type InboxJob struct {
	merger       *service.ConversionMerger
	inboxDir     string
	processedDir string
	now          func() time.Time
	mu           sync.Mutex
}

// NewInboxJob 创建收件目录导入任务
func NewInboxJob(merger *service.ConversionMerger, cfg config.ImportConfig) *InboxJob {
	processed := cfg.ProcessedDir
	if processed == "" {
		processed = filepath.Join(cfg.InboxDir, "processed")
	}
	return &InboxJob{
		merger:       merger,
		inboxDir:     cfg.InboxDir,
		processedDir: processed,
		now:          time.Now,
	}
}

// Schedule 注册到 cron
func (j *InboxJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := j.Run(context.Background()); err != nil {
			logging.Logger.Error("Conversion inbox import failed", zap.Error(err))
		}
	})
}

// Run 处理一次收件目录，返回成功合并的批次
func (j *InboxJob) Run(ctx context.Context) ([]*service.MergeResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.inboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}
	if err := os.MkdirAll(j.processedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create processed dir: %w", err)
	}

	entries, err := os.ReadDir(j.inboxDir)
	if err != nil {
		return nil, fmt.Errorf("read inbox dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	results := make([]*service.MergeResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := j.importFile(ctx, name)
		if err != nil {
			logging.Logger.Warn("Conversion file rejected",
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func (j *InboxJob) importFile(ctx context.Context, name string) (*service.MergeResult, error) {
	src := filepath.Join(j.inboxDir, name)
	stamp := j.now().UTC().Format("20060102T150405")

	file, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	rows, parseErr := ParseCSV(file)
	_ = file.Close()
	if parseErr != nil {
		dst := filepath.Join(j.processedDir, stamp+"_"+name+".failed")
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("%v; move aside: %w", parseErr, err)
		}
		return nil, parseErr
	}

	// 先移出收件目录再合并，文件不会被下一轮再次导入
	dst := filepath.Join(j.processedDir, stamp+"_"+name)
	if err := os.Rename(src, dst); err != nil {
		return nil, fmt.Errorf("move to processed dir: %w", err)
	}

	result, err := j.merger.MergeBatch(ctx, rows)
	if err != nil {
		return result, err
	}
	logging.Logger.Info("Conversion file imported",
		zap.String("file", name),
		zap.String("batch_id", result.BatchID),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// CronLogger 将 cron 内部日志接到 zap
type CronLogger struct {
	logger *zap.Logger
}

// NewCronLogger 创建 cron 日志适配
func NewCronLogger(logger *zap.Logger) CronLogger {
	return CronLogger{logger: logger}
}

// Info cron 调度信息
func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

// Error cron 调度错误
func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
