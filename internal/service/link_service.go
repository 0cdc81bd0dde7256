package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/model"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/pkg/logging"
	"affiliatelink-go/pkg/utils"
)

// LinkService 推广短链的创建与解析
type LinkService struct {
	links     repository.LinkRepository
	allocator *CodeAllocator
	cache     repository.LinkCache
	baseURL   string
}

// NewLinkService 创建短链服务，cache 可为空
func NewLinkService(links repository.LinkRepository, allocator *CodeAllocator, cache repository.LinkCache, baseURL string) *LinkService {
	return &LinkService{
		links:     links,
		allocator: allocator,
		cache:     cache,
		baseURL:   baseURL,
	}
}

// Create 创建推广短链。
// 插入时的唯一约束冲突视为碰撞，回到分配环节重试，与存在性检查共用同一重试上限。
func (s *LinkService) Create(ctx context.Context, targetURL string, affiliateID string) (*model.AffiliateLink, error) {
	targetURL = strings.TrimSpace(targetURL)
	if err := utils.ValidateTargetURL(targetURL); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	var owner *string
	if id := strings.TrimSpace(affiliateID); id != "" {
		owner = &id
	}

	maxAttempts := s.allocator.MaxAttempts()
	remaining := maxAttempts
	for remaining > 0 {
		code, used, err := s.allocator.allocate(ctx, remaining, remaining == maxAttempts)
		remaining -= used
		if err != nil {
			if errors.Is(err, apperrors.ErrAllocationExhausted) {
				break
			}
			return nil, err
		}

		link := &model.AffiliateLink{
			TargetURL:   targetURL,
			UniqueCode:  code,
			AffiliateID: owner,
		}
		err = s.links.Create(ctx, link)
		if err == nil {
			metrics.LinksCreatedTotal.Inc()
			logging.Logger.Info("Affiliate link created",
				zap.Uint("id", link.ID),
				zap.String("code", link.UniqueCode),
				zap.String("affiliate_id", link.AffiliateIDValue()),
			)
			return link, nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			logging.Logger.Error("Failed to insert affiliate link",
				zap.String("code", code),
				zap.Error(err),
			)
			return nil, apperrors.StorageError(err)
		}

		metrics.CodeCollisionsTotal.WithLabelValues("insert").Inc()
		logging.Logger.Warn("Unique code taken by concurrent insert, retrying",
			zap.String("code", code),
			zap.Int("remaining_attempts", remaining),
		)
	}

	logging.Logger.Error("Unique code allocation exhausted",
		zap.Int("max_attempts", maxAttempts),
	)
	return nil, apperrors.AllocationExhaustedError(maxAttempts)
}

// Resolve 按短码解析短链，不存在返回 NotFound
func (s *LinkService) Resolve(ctx context.Context, code string) (*model.AffiliateLink, error) {
	code = strings.TrimSpace(code)
	if err := utils.ValidateUniqueCode(code, s.allocator.CodeLength()); err != nil {
		return nil, apperrors.NotFoundError("error.link_not_found")
	}

	if s.cache != nil {
		link, err := s.cache.Get(ctx, code)
		if err != nil {
			logging.Logger.Warn("Link cache read failed",
				zap.String("code", code),
				zap.Error(err),
			)
		} else if link != nil {
			return link, nil
		}
	}

	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		logging.Logger.Error("Failed to resolve unique code",
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, apperrors.StorageError(err)
	}
	if link == nil {
		return nil, apperrors.NotFoundError("error.link_not_found")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, link); err != nil {
			logging.Logger.Warn("Link cache write failed",
				zap.String("code", code),
				zap.Error(err),
			)
		}
	}
	return link, nil
}

// GetByID 按 ID 查询短链
func (s *LinkService) GetByID(ctx context.Context, id uint) (*model.AffiliateLink, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if link == nil {
		return nil, apperrors.NotFoundError("error.link_not_found")
	}
	return link, nil
}

// ListAll 查询全部短链
func (s *LinkService) ListAll(ctx context.Context) ([]model.AffiliateLink, error) {
	links, err := s.links.ListAll(ctx)
	if err != nil {
		logging.Logger.Error("Failed to list affiliate links", zap.Error(err))
		return nil, apperrors.StorageError(err)
	}
	return links, nil
}

// FullLink 拼接对外访问的完整推广链接
func (s *LinkService) FullLink(link *model.AffiliateLink) string {
	if link == nil {
		return ""
	}
	return s.baseURL + link.UniqueCode
}
