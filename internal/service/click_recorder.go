package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/model"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/pkg/logging"
)

// ErrRecorderClosed 点击记录器已停止
var ErrRecorderClosed = errors.New("click recorder closed")

// ClickSink 点击事件的最终落地方式（直接写库或投递队列）
type ClickSink interface {
	Write(ctx context.Context, click *model.ClickEvent) error
}

// outcomeReporter 可选接口，sink 自报成功时的指标标签
type outcomeReporter interface {
	Outcome() string
}

// BreakerOptions 熔断器配置
type BreakerOptions struct {
	MaxFailures    uint32
	OpenTimeout    time.Duration
	HalfOpenProbes uint32
}

// StoreClickSink 直接写库，存储连续失败时熔断，避免堆积的写入拖慢工作协程
type StoreClickSink struct {
	clicks  repository.ClickRepository
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewStoreClickSink 创建写库 sink
func NewStoreClickSink(clicks repository.ClickRepository, opts BreakerOptions) *StoreClickSink {
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        "click-store",
		MaxRequests: opts.HalfOpenProbes,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &StoreClickSink{
		clicks:  clicks,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Write 写入点击记录
func (s *StoreClickSink) Write(ctx context.Context, click *model.ClickEvent) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.clicks.Create(ctx, click)
	})
	return err
}

// Outcome 写库成功的指标标签
func (s *StoreClickSink) Outcome() string {
	return metrics.ClickStored
}

// RecorderOptions 点击记录器配置
type RecorderOptions struct {
	Workers      int
	Buffer       int
	WriteTimeout time.Duration
}

// ClickRecorder 异步记录点击，调用方不等待写入结果。
// 写入使用独立于请求的 context，请求结束或客户端断开不会取消写入。
type ClickRecorder struct {
	sink         ClickSink
	events       chan *model.ClickEvent
	workers      int
	writeTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewClickRecorder 创建点击记录器
func NewClickRecorder(sink ClickSink, opts RecorderOptions) *ClickRecorder {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 1024
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Second
	}
	return &ClickRecorder{
		sink:         sink,
		events:       make(chan *model.ClickEvent, buffer),
		workers:      workers,
		writeTimeout: writeTimeout,
	}
}

// Start 启动写入协程
func (r *ClickRecorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.run()
	}
	logging.Logger.Info("Click recorder started",
		zap.Int("workers", r.workers),
		zap.Int("buffer", cap(r.events)),
	)
}

// Record 提交一次点击，立即返回。缓冲区满或记录器已停止时丢弃并返回错误，调用方可忽略。
func (r *ClickRecorder) Record(linkID uint, ip string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	event := &model.ClickEvent{
		LinkID:    linkID,
		IPAddress: ip,
		Timestamp: at.UTC(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.ClicksTotal.WithLabelValues(metrics.ClickDropped).Inc()
		return ErrRecorderClosed
	}
	select {
	case r.events <- event:
		return nil
	default:
		metrics.ClicksTotal.WithLabelValues(metrics.ClickDropped).Inc()
		logging.Logger.Warn("Click buffer full, dropping event",
			zap.Uint("link_id", linkID),
		)
		return errors.New("click buffer full")
	}
}

// Stop 停止接收新点击并等待缓冲区写完，ctx 到期则放弃等待
func (r *ClickRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	started := r.started
	r.mu.Unlock()

	if !started {
		// 未启动时就地写完残留事件
		r.wg.Add(1)
		go r.run()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logging.Logger.Info("Click recorder stopped")
		return nil
	case <-ctx.Done():
		logging.Logger.Warn("Click recorder stop timed out, pending events abandoned",
			zap.Int("pending", len(r.events)),
		)
		return ctx.Err()
	}
}

func (r *ClickRecorder) run() {
	defer r.wg.Done()
	for event := range r.events {
		r.write(event)
	}
}

func (r *ClickRecorder) write(event *model.ClickEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.ClicksTotal.WithLabelValues(metrics.ClickFailed).Inc()
			logging.Logger.Error("Click write panicked",
				zap.Any("panic", rec),
				zap.Uint("link_id", event.LinkID),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.sink.Write(ctx, event); err != nil {
		metrics.ClicksTotal.WithLabelValues(metrics.ClickFailed).Inc()
		logging.Logger.Error("Failed to record click",
			zap.Uint("link_id", event.LinkID),
			zap.String("ip", event.IPAddress),
			zap.Error(err),
		)
		return
	}

	outcome := metrics.ClickStored
	if reporter, ok := r.sink.(outcomeReporter); ok {
		outcome = reporter.Outcome()
	}
	metrics.ClicksTotal.WithLabelValues(outcome).Inc()
}
