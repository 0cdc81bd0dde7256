package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"affiliatelink-go/internal/apperrors"
	"affiliatelink-go/internal/dto"
	"affiliatelink-go/internal/i18n"
	"affiliatelink-go/internal/middleware"
	"affiliatelink-go/response"
)

// AuthHandler 管理口令登录
type AuthHandler struct {
	passwordHash string
}

// NewAuthHandler 创建登录接口
func NewAuthHandler(passwordHash string) *AuthHandler {
	return &AuthHandler{passwordHash: passwordHash}
}

// Login 校验管理口令（POST /api/login），未配置口令时直接通过
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(c, &req, err))
		return
	}
	if h.passwordHash != "" && !middleware.CheckPassword(h.passwordHash, req.Password) {
		_ = c.Error(apperrors.UnauthorizedError())
		return
	}
	c.JSON(http.StatusOK, response.OK(struct{}{}, i18n.T(c.Request.Context(), "auth.login_success", nil)))
}
