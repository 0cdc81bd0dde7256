package dto

// ConversionTotalResponse 推广者累计转化
type ConversionTotalResponse struct {
	AffiliateID     string `json:"affiliate_id"`
	TotalConversion int64  `json:"total_conversion"`
}
