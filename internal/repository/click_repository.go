package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"affiliatelink-go/internal/model"
)

// ClickRepository 点击记录数据访问接口
type ClickRepository interface {
	Create(ctx context.Context, click *model.ClickEvent) error
	CountDistinctIPs(ctx context.Context, linkID uint, from, to time.Time) (int64, error)
}

// GormClickRepository GORM 点击仓储实现
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository 创建点击仓储
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// Create 追加点击记录，未带时间时使用写入时间
func (r *GormClickRepository) Create(ctx context.Context, click *model.ClickEvent) error {
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now()
	}
	click.Timestamp = click.Timestamp.UTC()
	return r.db.WithContext(ctx).Create(click).Error
}

// CountDistinctIPs 统计 [from, to) 区间内的独立 IP 数
func (r *GormClickRepository) CountDistinctIPs(ctx context.Context, linkID uint, from, to time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("link_id = ? AND clicked_at >= ? AND clicked_at < ?", linkID, from.UTC(), to.UTC()).
		Distinct("ip_address").
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
