package dto

// LoginRequest 管理口令登录
type LoginRequest struct {
	Password string `json:"password" binding:"required" msg:"error.password_required"`
}
