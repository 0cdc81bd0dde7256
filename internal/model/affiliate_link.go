package model

import "time"

// AffiliateLink 推广短链，创建后不可变
type AffiliateLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TargetURL   string    `gorm:"size:2048;not null" json:"target_url"`
	UniqueCode  string    `gorm:"size:16;not null;uniqueIndex:idx_affiliate_links_unique_code" json:"unique_code"`
	AffiliateID *string   `gorm:"size:128;index" json:"affiliate_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (AffiliateLink) TableName() string {
	return "affiliate_links"
}

// AffiliateIDValue 返回推广者 ID，未归属时为空串
func (l *AffiliateLink) AffiliateIDValue() string {
	if l == nil || l.AffiliateID == nil {
		return ""
	}
	return *l.AffiliateID
}
