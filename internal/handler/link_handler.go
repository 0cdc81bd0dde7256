package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/dto"
	"affiliatelink-go/internal/i18n"
	"affiliatelink-go/internal/service"
	"affiliatelink-go/response"
)

// LinkHandler 推广短链管理接口
type LinkHandler struct {
	links     *service.LinkService
	analytics *service.AnalyticsService
}

// NewLinkHandler 创建短链接口
func NewLinkHandler(links *service.LinkService, analytics *service.AnalyticsService) *LinkHandler {
	return &LinkHandler{links: links, analytics: analytics}
}

// Create 创建推广短链（POST /api/links）
func (h *LinkHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(c, &req, err))
		return
	}

	link, err := h.links.Create(c.Request.Context(), req.TargetURL, req.AffiliateID)
	if err != nil {
		zap.L().Warn("Affiliate link creation failed",
			zap.Error(err),
			zap.String("target_url", req.TargetURL),
			zap.String("affiliate_id", req.AffiliateID),
		)
		_ = c.Error(err)
		return
	}

	msg := i18n.T(c.Request.Context(), "link.created", nil)
	c.JSON(http.StatusCreated, response.OK(dto.NewLinkResponse(link, h.links.FullLink(link)), msg))
}

// List 查询全部短链及今日独立点击、推广者累计转化（GET /api/links）
func (h *LinkHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	links, err := h.links.ListAll(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	today := h.analytics.Today()
	items := make([]dto.LinkSummary, 0, len(links))
	for i := range links {
		link := &links[i]
		item := dto.LinkSummary{LinkResponse: dto.NewLinkResponse(link, h.links.FullLink(link))}

		// 单条统计失败按 0 展示，不影响列表
		if clicks, err := h.analytics.UniqueClicksOnDate(ctx, link.ID, today); err != nil {
			zap.L().Warn("Unique click count failed", zap.Uint("link_id", link.ID), zap.Error(err))
		} else {
			item.UniqueClicksToday = clicks
		}
		if total, err := h.analytics.ConversionTotal(ctx, link.AffiliateIDValue()); err != nil {
			zap.L().Warn("Conversion total lookup failed", zap.Uint("link_id", link.ID), zap.Error(err))
		} else {
			item.TotalConversions = total
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, response.List(items, i18n.T(ctx, "common.success", nil)))
}

// Stats 单条短链某日独立点击（GET /api/links/:id/stats?date=YYYY-MM-DD）
func (h *LinkHandler) Stats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apperrors.ValidationError("error.link_id_invalid"))
		return
	}

	var query dto.LinkStatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(bindingError(c, &query, err))
		return
	}
	date := query.Date
	if date == "" {
		date = h.analytics.Today()
	}

	ctx := c.Request.Context()
	link, err := h.links.GetByID(ctx, uint(id))
	if err != nil {
		_ = c.Error(err)
		return
	}
	clicks, err := h.analytics.UniqueClicksOnDate(ctx, link.ID, date)
	if err != nil {
		_ = c.Error(err)
		return
	}
	conversions, err := h.analytics.ConversionTotal(ctx, link.AffiliateIDValue())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(dto.LinkStatsResponse{
		LinkID:           link.ID,
		Date:             date,
		UniqueClicks:     clicks,
		TotalConversions: conversions,
	}, i18n.T(ctx, "common.success", nil)))
}
