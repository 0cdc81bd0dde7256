package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"affiliatelink-go/internal/middleware"
)

// Handlers 路由依赖的全部接口
type Handlers struct {
	Links       *LinkHandler
	Conversions *ConversionHandler
	Redirect    *RedirectHandler
	Auth        *AuthHandler
}

// RegisterRoutes 注册路由，/api 下除登录外均需管理口令
func RegisterRoutes(r *gin.Engine, h *Handlers, passwordHash string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/go", h.Redirect.Redirect)
	r.GET("/go/:code", h.Redirect.Redirect)

	api := r.Group("/api")
	api.POST("/login", h.Auth.Login)

	guarded := api.Group("", middleware.AdminAuth(passwordHash))
	{
		guarded.POST("/links", h.Links.Create)
		guarded.GET("/links", h.Links.List)
		guarded.GET("/links/:id/stats", h.Links.Stats)

		guarded.GET("/conversions/:affiliate_id", h.Conversions.Get)
		guarded.POST("/conversions/import", h.Conversions.Import)
	}
}
