package worker

import (
	"errors"

	"github.com/hibiken/asynq"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/queue"
	"affiliatelink-go/pkg/logging"
)

// Service 点击队列消费服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建消费服务
func NewService(cfg config.QueueConfig, consumer *Consumer) (*Service, error) {
	if !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logging.Logger.Sugar()
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}, nil
}

// Start 后台启动消费
func (s *Service) Start() error {
	return s.server.Start(s.mux)
}

// Stop 停止消费，等待进行中的任务完成
func (s *Service) Stop() {
	s.server.Shutdown()
}
