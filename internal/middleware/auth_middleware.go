package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"affiliatelink-go/internal/apperrors"
)

// AdminPasswordHeader 管理口令请求头
const AdminPasswordHeader = "X-Admin-Password"

// CheckPassword 校验口令与 bcrypt 哈希是否匹配
func CheckPassword(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AdminAuth 校验管理口令，hash 为空时不做校验
func AdminAuth(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hash == "" {
			c.Next()
			return
		}
		if !CheckPassword(hash, c.GetHeader(AdminPasswordHeader)) {
			_ = c.Error(apperrors.UnauthorizedError())
			c.Abort()
			return
		}
		c.Next()
	}
}
