package handler

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"affiliatelink-go/internal/apperrors"
)

// bindingError 将绑定错误转换为带 msg 标签消息的校验错误
func bindingError(c *gin.Context, req interface{}, err error) *apperrors.AppError {
	zap.L().Warn("Request binding failed",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.InvalidRequestErrorDefault()
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, e := range validationErrs {
		field, ok := t.FieldByName(e.StructField())
		if !ok {
			continue
		}
		if customMsg := field.Tag.Get("msg"); customMsg != "" {
			return apperrors.ValidationError(customMsg)
		}
	}
	return apperrors.InvalidRequestErrorDefault()
}
