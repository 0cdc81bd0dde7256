package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/metrics"
	"affiliatelink-go/internal/service"
)

// ClickRecorder 记录点击，不阻塞调用方
type ClickRecorder interface {
	Record(linkID uint, ip string, at time.Time) error
}

// RedirectHandler 短码跳转
type RedirectHandler struct {
	links       *service.LinkService
	recorder    ClickRecorder
	fallbackURL string
}

// NewRedirectHandler 创建跳转接口
func NewRedirectHandler(links *service.LinkService, recorder ClickRecorder, fallbackURL string) *RedirectHandler {
	return &RedirectHandler{
		links:       links,
		recorder:    recorder,
		fallbackURL: withErrorParam(fallbackURL, "invalid_code"),
	}
}

// Redirect 解析短码并 302 跳转（GET /go?code=CODE 与 GET /go/:code）
func (h *RedirectHandler) Redirect(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		code = c.Query("code")
	}

	link, err := h.links.Resolve(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Redirect(http.StatusFound, h.fallbackURL)
			return
		}
		metrics.RedirectsTotal.WithLabelValues("error").Inc()
		_ = c.Error(err)
		return
	}

	// 跳转决定已做出，点击记录失败只影响统计
	if err := h.recorder.Record(link.ID, c.ClientIP(), time.Now()); err != nil {
		zap.L().Debug("Click not recorded", zap.Uint("link_id", link.ID), zap.Error(err))
	}

	metrics.RedirectsTotal.WithLabelValues("found").Inc()
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, link.TargetURL)
}

func withErrorParam(fallback, reason string) string {
	u, err := url.Parse(fallback)
	if err != nil || fallback == "" {
		return "/?error=" + url.QueryEscape(reason)
	}
	q := u.Query()
	q.Set("error", reason)
	u.RawQuery = q.Encode()
	return u.String()
}
