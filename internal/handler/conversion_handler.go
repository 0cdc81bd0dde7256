package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/dto"
	"affiliatelink-go/internal/i18n"
	"affiliatelink-go/internal/importer"
	"affiliatelink-go/internal/service"
	"affiliatelink-go/response"
)

// maxImportSize 单次上传的 CSV 上限
const maxImportSize = 10 << 20

// ConversionHandler 转化导入与查询接口
type ConversionHandler struct {
	merger    *service.ConversionMerger
	analytics *service.AnalyticsService
}

// NewConversionHandler 创建转化接口
func NewConversionHandler(merger *service.ConversionMerger, analytics *service.AnalyticsService) *ConversionHandler {
	return &ConversionHandler{merger: merger, analytics: analytics}
}

// Get 查询推广者累计转化（GET /api/conversions/:affiliate_id）
func (h *ConversionHandler) Get(c *gin.Context) {
	affiliateID := c.Param("affiliate_id")
	total, err := h.analytics.ConversionTotal(c.Request.Context(), affiliateID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(dto.ConversionTotalResponse{
		AffiliateID:     affiliateID,
		TotalConversion: total,
	}, i18n.T(c.Request.Context(), "common.success", nil)))
}

// Import 上传转化 CSV 并合并（POST /api/conversions/import，multipart 字段 file）
func (h *ConversionHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.ValidationError("error.file_required"))
		return
	}
	if fileHeader.Size > maxImportSize {
		_ = c.Error(apperrors.ValidationError("error.file_too_large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.SystemError(err))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	rows, err := importer.ParseCSV(file)
	if err != nil {
		zap.L().Warn("Conversion CSV rejected",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		_ = c.Error(apperrors.ValidationError("error.csv_invalid"))
		return
	}

	// 解析成功后批次需完整合并，客户端断开不中断写入
	result, err := h.merger.MergeBatch(context.WithoutCancel(c.Request.Context()), rows)
	if err != nil {
		_ = c.Error(apperrors.SystemError(err))
		return
	}

	msg := i18n.T(c.Request.Context(), "conversion.imported", map[string]interface{}{
		"Applied": result.Applied,
		"Skipped": result.Skipped,
	})
	c.JSON(http.StatusOK, response.OK(result, msg))
}
