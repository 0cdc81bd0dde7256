package model

import "time"

// ConversionTotal 推广者累计转化数，只做加法
type ConversionTotal struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	AffiliateID     string    `gorm:"size:128;not null;uniqueIndex:idx_conversion_totals_affiliate_id" json:"affiliate_id"`
	TotalConversion int64     `gorm:"not null;default:0" json:"total_conversion"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ConversionTotal) TableName() string {
	return "conversion_totals"
}
