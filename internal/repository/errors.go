package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateCode 插入时短码唯一约束冲突
	ErrDuplicateCode = errors.New("unique code already exists")
	// ErrTotalOverflow 累计转化超出 int64 范围
	ErrTotalOverflow = errors.New("conversion total would overflow")
)

// isDuplicateKey 判断唯一约束冲突；驱动未翻译错误时按错误文本兜底
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
