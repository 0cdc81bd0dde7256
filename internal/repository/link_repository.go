package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"affiliatelink-go/internal/model"
)

// LinkRepository 推广短链数据访问接口
type LinkRepository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, link *model.AffiliateLink) error
	GetByCode(ctx context.Context, code string) (*model.AffiliateLink, error)
	GetByID(ctx context.Context, id uint) (*model.AffiliateLink, error)
	ListAll(ctx context.Context) ([]model.AffiliateLink, error)
}

// GormLinkRepository GORM 短链仓储实现
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建短链仓储
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// ExistsByCode 短码是否已被占用
func (r *GormLinkRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.AffiliateLink{}).
		Where("unique_code = ?", code).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// Create 插入短链，唯一约束冲突返回 ErrDuplicateCode
func (r *GormLinkRepository) Create(ctx context.Context, link *model.AffiliateLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// GetByCode 按短码查询，不存在返回 nil, nil
func (r *GormLinkRepository) GetByCode(ctx context.Context, code string) (*model.AffiliateLink, error) {
	var link model.AffiliateLink
	if err := r.db.WithContext(ctx).Where("unique_code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByID 按 ID 查询，不存在返回 nil, nil
func (r *GormLinkRepository) GetByID(ctx context.Context, id uint) (*model.AffiliateLink, error) {
	if id == 0 {
		return nil, nil
	}
	var link model.AffiliateLink
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// ListAll 查询全部短链
func (r *GormLinkRepository) ListAll(ctx context.Context) ([]model.AffiliateLink, error) {
	links := make([]model.AffiliateLink, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
