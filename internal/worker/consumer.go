package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/model"
	"affiliatelink-go/internal/queue"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/pkg/logging"
)

// Consumer 点击任务消费者
type Consumer struct {
	clicks repository.ClickRepository
}

// NewConsumer 创建消费者
func NewConsumer(clicks repository.ClickRepository) *Consumer {
	return &Consumer{clicks: clicks}
}

// Register 注册任务处理函数
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskClickRecord, c.handleClickRecord)
}

func (c *Consumer) handleClickRecord(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseClickPayload(task)
	if err != nil {
		logging.Logger.Warn("Discarding malformed click task", zap.Error(err))
		return fmt.Errorf("decode click payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.LinkID == 0 {
		logging.Logger.Debug("Skipping click task without link id")
		return nil
	}

	click := &model.ClickEvent{
		LinkID:    payload.LinkID,
		IPAddress: payload.IPAddress,
		Timestamp: payload.Timestamp,
	}
	if err := c.clicks.Create(ctx, click); err != nil {
		logging.Logger.Warn("Failed to store queued click",
			zap.Uint("link_id", payload.LinkID),
			zap.Error(err),
		)
		return err
	}
	metrics.ClicksTotal.WithLabelValues(metrics.ClickStored).Inc()
	return nil
}
