package dto

import (
	"time"

	"affiliatelink-go/internal/model"
)

// CreateLinkRequest 创建推广短链请求
type CreateLinkRequest struct {
	TargetURL   string `json:"target_url" binding:"required,max=2048" msg:"error.target_url_required"`
	AffiliateID string `json:"affiliate_id" binding:"omitempty,max=64" msg:"error.affiliate_id_invalid"`
}

// LinkResponse 短链信息
type LinkResponse struct {
	ID          uint      `json:"id"`
	TargetURL   string    `json:"target_url"`
	UniqueCode  string    `json:"unique_code"`
	AffiliateID *string   `json:"affiliate_id"`
	FullLink    string    `json:"full_link"`
	CreatedAt   time.Time `json:"created_at"`
}

// LinkSummary 列表中的短链及今日统计
type LinkSummary struct {
	LinkResponse
	UniqueClicksToday int64 `json:"unique_clicks_today"`
	TotalConversions  int64 `json:"total_conversions"`
}

// LinkStatsQuery 统计查询参数
type LinkStatsQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02" msg:"error.date_invalid"`
}

// LinkStatsResponse 单条短链的日统计
type LinkStatsResponse struct {
	LinkID           uint   `json:"link_id"`
	Date             string `json:"date"`
	UniqueClicks     int64  `json:"unique_clicks"`
	TotalConversions int64  `json:"total_conversions"`
}

// NewLinkResponse 由模型构造响应
func NewLinkResponse(link *model.AffiliateLink, fullLink string) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		TargetURL:   link.TargetURL,
		UniqueCode:  link.UniqueCode,
		AffiliateID: link.AffiliateID,
		FullLink:    fullLink,
		CreatedAt:   link.CreatedAt,
	}
}
