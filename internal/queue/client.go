package queue

import (
	"context"
	"strings"

	"github.com/hibiken/asynq"

	"affiliatelink-go/constant"
	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/model"
)

const (
	// ClickQueue 点击任务队列名称
	ClickQueue = constant.QueueClicks
)

// Client 队列客户端封装
type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewClient 创建队列客户端
func NewClient(cfg config.QueueConfig) *Client {
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return &Client{
		client:   asynq.NewClient(buildRedisOpt(cfg)),
		queue:    ClickQueue,
		maxRetry: maxRetry,
	}
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueClick 推送点击落库任务
func (c *Client) EnqueueClick(ctx context.Context, payload ClickPayload, opts ...asynq.Option) error {
	task, err := NewClickTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.queue), asynq.MaxRetry(c.maxRetry)}, opts...)
	_, err = c.client.EnqueueContext(ctx, task, options...)
	return err
}

// Write 作为点击 sink 使用：投递后由 worker 落库
func (c *Client) Write(ctx context.Context, click *model.ClickEvent) error {
	return c.EnqueueClick(ctx, ClickPayload{
		LinkID:    click.LinkID,
		IPAddress: click.IPAddress,
		Timestamp: click.Timestamp,
	})
}

// Outcome 投递成功的指标标签
func (c *Client) Outcome() string {
	return metrics.ClickQueued
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{ClickQueue: 1},
	}
}

func buildRedisOpt(cfg config.QueueConfig) asynq.RedisClientOpt {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
