package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/pkg/logging"
	"affiliatelink-go/pkg/utils"
)

const (
	defaultCodeLength  = 8
	defaultMaxAttempts = 10
)

// CodeGenerator 生成候选短码
type CodeGenerator func() (string, error)

// AllocatorOptions 短码分配配置
type AllocatorOptions struct {
	CodeLength  int
	MaxAttempts int
	Backoff     time.Duration
	Generator   CodeGenerator // 为空时使用 crypto/rand 随机码
}

// CodeAllocator 生成未被占用的短码。
// 存在性检查不做预留，唯一性最终由插入时的唯一约束保证。
type CodeAllocator struct {
	links       repository.LinkRepository
	generate    CodeGenerator
	codeLength  int
	maxAttempts int
	backoff     time.Duration
}

// NewCodeAllocator 创建短码分配器
func NewCodeAllocator(links repository.LinkRepository, opts AllocatorOptions) *CodeAllocator {
	codeLength := opts.CodeLength
	if codeLength <= 0 {
		codeLength = defaultCodeLength
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	generate := opts.Generator
	if generate == nil {
		generate = func() (string, error) {
			return utils.RandomCode(codeLength)
		}
	}
	return &CodeAllocator{
		links:       links,
		generate:    generate,
		codeLength:  codeLength,
		maxAttempts: maxAttempts,
		backoff:     opts.Backoff,
	}
}

// MaxAttempts 单次创建允许的最大尝试次数
func (a *CodeAllocator) MaxAttempts() int {
	return a.maxAttempts
}

// CodeLength 短码长度
func (a *CodeAllocator) CodeLength() int {
	return a.codeLength
}

// Allocate 返回一个当前未被占用的短码，超过重试上限返回 AllocationExhausted
func (a *CodeAllocator) Allocate(ctx context.Context) (string, error) {
	code, _, err := a.allocate(ctx, a.maxAttempts, true)
	return code, err
}

// allocate 在 budget 次尝试内寻找候选码，返回候选码与本次消耗的尝试次数
func (a *CodeAllocator) allocate(ctx context.Context, budget int, first bool) (string, int, error) {
	for attempt := 1; attempt <= budget; attempt++ {
		if !first || attempt > 1 {
			if err := a.wait(ctx); err != nil {
				return "", attempt, err
			}
		}

		code, err := a.generate()
		if err != nil {
			return "", attempt, apperrors.SystemError(err)
		}

		exists, err := a.links.ExistsByCode(ctx, code)
		if err != nil {
			return "", attempt, apperrors.StorageError(err)
		}
		if !exists {
			return code, attempt, nil
		}

		metrics.CodeCollisionsTotal.WithLabelValues("check").Inc()
		logging.Logger.Debug("Unique code collision on existence check",
			zap.String("code", code),
			zap.Int("attempt", attempt),
		)
	}
	return "", budget, apperrors.AllocationExhaustedError(budget)
}

func (a *CodeAllocator) wait(ctx context.Context) error {
	if a.backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
