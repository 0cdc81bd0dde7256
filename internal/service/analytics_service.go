package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/pkg/logging"
)

// DateLayout 统计日期格式
const DateLayout = "2006-01-02"

// AnalyticsService 点击与转化统计
type AnalyticsService struct {
	clicks      repository.ClickRepository
	conversions repository.ConversionRepository
	loc         *time.Location
	now         func() time.Time
}

// NewAnalyticsService 创建统计服务，loc 为空时按 UTC 划分自然日
func NewAnalyticsService(clicks repository.ClickRepository, conversions repository.ConversionRepository, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		clicks:      clicks,
		conversions: conversions,
		loc:         loc,
		now:         time.Now,
	}
}

// LoadLocation 解析统计时区名称，空值为 UTC
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Today 当前统计时区下的日期
func (s *AnalyticsService) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// ParseDate 解析 YYYY-MM-DD，返回该日在统计时区的零点
func (s *AnalyticsService) ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), s.loc)
	if err != nil {
		return time.Time{}, apperrors.ValidationError("error.date_invalid")
	}
	return day, nil
}

// UniqueClicksOnDate 指定日期内该短链的独立 IP 数，无点击为 0
func (s *AnalyticsService) UniqueClicksOnDate(ctx context.Context, linkID uint, date string) (int64, error) {
	day, err := s.ParseDate(date)
	if err != nil {
		return 0, err
	}
	return s.uniqueClicksOnDay(ctx, linkID, day)
}

// UniqueClicksToday 今日独立 IP 数
func (s *AnalyticsService) UniqueClicksToday(ctx context.Context, linkID uint) (int64, error) {
	return s.UniqueClicksOnDate(ctx, linkID, s.Today())
}

func (s *AnalyticsService) uniqueClicksOnDay(ctx context.Context, linkID uint, day time.Time) (int64, error) {
	total, err := s.clicks.CountDistinctIPs(ctx, linkID, day, day.AddDate(0, 0, 1))
	if err != nil {
		logging.Logger.Error("Failed to count unique clicks",
			zap.Uint("link_id", linkID),
			zap.Time("day", day),
			zap.Error(err),
		)
		return 0, apperrors.StorageError(err)
	}
	return total, nil
}

// ConversionTotal 推广者累计转化，无记录为 0
func (s *AnalyticsService) ConversionTotal(ctx context.Context, affiliateID string) (int64, error) {
	affiliateID = strings.TrimSpace(affiliateID)
	if affiliateID == "" {
		return 0, nil
	}
	total, err := s.conversions.GetByAffiliateID(ctx, affiliateID)
	if err != nil {
		logging.Logger.Error("Failed to read conversion total",
			zap.String("affiliate_id", affiliateID),
			zap.Error(err),
		)
		return 0, apperrors.StorageError(err)
	}
	if total == nil {
		return 0, nil
	}
	return total.TotalConversion, nil
}
