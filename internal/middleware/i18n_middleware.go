package middleware

import (
	"github.com/gin-gonic/gin"
	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"affiliatelink-go/internal/i18n"
)

// I18nMiddleware 按 Accept-Language 选择 Localizer
func I18nMiddleware(catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, _, _ := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		lang := catalog.DefaultLang
		for _, tag := range tags {
			if catalog.Supports(tag.String()) {
				lang = tag.String()
				break
			}
			base, _ := tag.Base()
			if catalog.Supports(base.String()) {
				lang = base.String()
				break
			}
		}

		localizer := thirdPartyI18n.NewLocalizer(catalog.Bundle, lang)
		c.Request = c.Request.WithContext(i18n.WithLocalizer(c.Request.Context(), localizer))
		c.Next()
	}
}
