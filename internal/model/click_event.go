package model

import "time"

// ClickEvent 跳转点击记录，只追加
type ClickEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    uint      `gorm:"not null;index:idx_click_events_link_ts,priority:1" json:"link_id"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	Timestamp time.Time `gorm:"column:clicked_at;not null;index:idx_click_events_link_ts,priority:2" json:"timestamp"`
}

// TableName 指定表名
func (ClickEvent) TableName() string {
	return "click_events"
}
