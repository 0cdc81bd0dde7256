package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/i18n"
	"affiliatelink-go/pkg/logging"
	"affiliatelink-go/response"
)

// GlobalErrorMiddleware 全局错误中间件，AppError 按状态码返回本地化消息
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		for _, err := range c.Errors {
			var appErr *apperrors.AppError
			if errors.As(err.Err, &appErr) {
				if appErr.Code >= http.StatusInternalServerError {
					logging.Logger.Error("Request failed",
						zap.String("path", c.Request.URL.Path),
						zap.Int("status", appErr.Code),
						zap.Error(appErr),
					)
				}
				msg := i18n.T(c.Request.Context(), appErr.Message, nil)
				c.AbortWithStatusJSON(appErr.Code, response.Error(msg))
				return
			}
		}

		// 默认处理未定义的错误
		logging.Logger.Error("Unhandled request error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(c.Errors.Last().Err),
		)
		msg := i18n.T(c.Request.Context(), "error.system", nil)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(msg))
	}
}
