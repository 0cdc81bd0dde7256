package i18n

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type localizerKey struct{}

// Catalog 已加载的消息包及其支持的语言
type Catalog struct {
	Bundle      *i18n.Bundle
	Languages   []string
	DefaultLang string
}

// InitI18n 加载 TOML 消息文件，文件名即语言标签（如 en.toml -> "en"）
func InitI18n(filePaths []string, defaultLang string) (*Catalog, error) {
	if defaultLang == "" {
		defaultLang = "en"
	}
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	catalog := &Catalog{Bundle: bundle, DefaultLang: defaultLang}
	for _, filePath := range filePaths {
		file, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(file, filePath); err != nil {
			return nil, err
		}
		catalog.Languages = append(catalog.Languages, extractLanguageFromPath(filePath))
	}
	return catalog, nil
}

// Supports 是否加载了该语言
func (c *Catalog) Supports(lang string) bool {
	for _, l := range c.Languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// 从文件路径中提取语言标签
func extractLanguageFromPath(filePath string) string {
	baseName := filepath.Base(filePath)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName))
}

// WithLocalizer 将 Localizer 放入 context
func WithLocalizer(ctx context.Context, localizer *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, localizer)
}

// T 翻译消息，缺少 Localizer 或消息时返回 key 本身
func T(ctx context.Context, key string, data map[string]interface{}) string {
	localizer, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	if !ok || localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return key
	}
	return msg
}
