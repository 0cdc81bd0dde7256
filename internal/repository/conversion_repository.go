package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"affiliatelink-go/internal/model"
)

// ConversionRepository 转化累计数据访问接口
type ConversionRepository interface {
	AddDelta(ctx context.Context, affiliateID string, delta int64) error
	GetByAffiliateID(ctx context.Context, affiliateID string) (*model.ConversionTotal, error)
}

// GormConversionRepository GORM 转化仓储实现
type GormConversionRepository struct {
	db *gorm.DB
}

// NewConversionRepository 创建转化仓储
func NewConversionRepository(db *gorm.DB) *GormConversionRepository {
	return &GormConversionRepository{db: db}
}

// AddDelta 单条 upsert：不存在则插入 delta，存在则在库内累加，避免读改写竞争。
// 累加会超出 int64 时不更新并返回 ErrTotalOverflow。
func (r *GormConversionRepository) AddDelta(ctx context.Context, affiliateID string, delta int64) error {
	if delta < 0 {
		return fmt.Errorf("negative delta %d", delta)
	}
	now := time.Now()
	row := &model.ConversionTotal{
		AffiliateID:     affiliateID,
		TotalConversion: delta,
		UpdatedAt:       now,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "affiliate_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_conversion": gorm.Expr("conversion_totals.total_conversion + ?", delta),
			"updated_at":       now,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "conversion_totals.total_conversion <= ?", Vars: []interface{}{math.MaxInt64 - delta}},
		}},
	}).Create(row)
	if result.Error != nil {
		return result.Error
	}
	// MySQL 不支持 DO UPDATE ... WHERE，溢出由 BIGINT 越界报错；值未变化时 RowsAffected 也为 0
	if result.RowsAffected == 0 && r.db.Dialector.Name() != "mysql" {
		return ErrTotalOverflow
	}
	return nil
}

// GetByAffiliateID 查询累计转化，不存在返回 nil, nil
func (r *GormConversionRepository) GetByAffiliateID(ctx context.Context, affiliateID string) (*model.ConversionTotal, error) {
	var total model.ConversionTotal
	if err := r.db.WithContext(ctx).Where("affiliate_id = ?", affiliateID).First(&total).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &total, nil
}
