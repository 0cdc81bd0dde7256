package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/pkg/logging"
)

// ConversionRow 导入批次中的一行，Delta 保留原始文本
type ConversionRow struct {
	Line        int
	AffiliateID string
	Delta       string
}

// MergeResult 一次批量合并的结果
type MergeResult struct {
	BatchID  string                      `json:"batch_id"`
	Total    int                         `json:"total"`
	Applied  int                         `json:"applied"`
	Skipped  int                         `json:"skipped"`
	Warnings []*apperrors.ImportRowError `json:"warnings"`
}

// ConversionMerger 将转化增量累加到推广者累计值。
// 合并不幂等，同一批次重复导入会重复累加。
type ConversionMerger struct {
	conversions repository.ConversionRepository
}

// NewConversionMerger 创建转化合并器
func NewConversionMerger(conversions repository.ConversionRepository) *ConversionMerger {
	return &ConversionMerger{conversions: conversions}
}

// MergeBatch 逐行合并，无法处理的行记为告警并跳过，不影响其余行
func (m *ConversionMerger) MergeBatch(ctx context.Context, rows []ConversionRow) (*MergeResult, error) {
	result := &MergeResult{
		BatchID:  uuid.NewString(),
		Total:    len(rows),
		Warnings: make([]*apperrors.ImportRowError, 0),
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			logging.Logger.Warn("Conversion batch interrupted",
				zap.String("batch_id", result.BatchID),
				zap.Int("applied", result.Applied),
				zap.Error(err),
			)
			return result, err
		}

		if rowErr := m.mergeRow(ctx, row); rowErr != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, rowErr)
			metrics.ConversionRowsTotal.WithLabelValues(metrics.RowSkipped).Inc()
			logging.Logger.Warn("Conversion row skipped",
				zap.String("batch_id", result.BatchID),
				zap.Int("line", rowErr.Line),
				zap.String("affiliate_id", rowErr.AffiliateID),
				zap.String("reason", rowErr.Reason),
			)
			continue
		}
		result.Applied++
		metrics.ConversionRowsTotal.WithLabelValues(metrics.RowApplied).Inc()
	}

	logging.Logger.Info("Conversion batch merged",
		zap.String("batch_id", result.BatchID),
		zap.Int("total", result.Total),
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (m *ConversionMerger) mergeRow(ctx context.Context, row ConversionRow) *apperrors.ImportRowError {
	rowErr := func(reason string) *apperrors.ImportRowError {
		return &apperrors.ImportRowError{
			Line:        row.Line,
			AffiliateID: row.AffiliateID,
			Delta:       row.Delta,
			Reason:      reason,
		}
	}

	affiliateID := strings.TrimSpace(row.AffiliateID)
	if affiliateID == "" {
		return rowErr("missing affiliate_id")
	}
	delta, err := strconv.ParseInt(strings.TrimSpace(row.Delta), 10, 64)
	if err != nil {
		return rowErr("delta is not an integer")
	}
	if delta < 0 {
		return rowErr("delta is negative")
	}
	if err := m.conversions.AddDelta(ctx, affiliateID, delta); err != nil {
		if errors.Is(err, repository.ErrTotalOverflow) {
			return rowErr("total would overflow")
		}
		logging.Logger.Error("Failed to apply conversion delta",
			zap.String("affiliate_id", affiliateID),
			zap.Int64("delta", delta),
			zap.Error(err),
		)
		return rowErr("storage error")
	}
	return nil
}
