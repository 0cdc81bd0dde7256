package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMessages(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitI18nAndTranslate(t *testing.T) {
	dir := t.TempDir()
	en := writeMessages(t, dir, "en.toml", "\"error.link_not_found\" = \"Link not found\"\n")
	zh := writeMessages(t, dir, "zh.toml", "\"error.link_not_found\" = \"短链不存在\"\n")

	catalog, err := InitI18n([]string{en, zh}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "zh"}, catalog.Languages)
	assert.True(t, catalog.Supports("ZH"))
	assert.False(t, catalog.Supports("fr"))

	ctx := WithLocalizer(context.Background(), i18n.NewLocalizer(catalog.Bundle, "zh"))
	assert.Equal(t, "短链不存在", T(ctx, "error.link_not_found", nil))
	assert.Equal(t, "error.unknown_key", T(ctx, "error.unknown_key", nil))
}

func TestTWithoutLocalizer(t *testing.T) {
	assert.Equal(t, "error.storage", T(context.Background(), "error.storage", nil))
}

func TestInitI18nMissingFile(t *testing.T) {
	_, err := InitI18n([]string{filepath.Join(t.TempDir(), "missing.toml")}, "en")
	assert.Error(t, err)
}

func TestRepositoryMessageFilesLoad(t *testing.T) {
	catalog, err := InitI18n([]string{"../../i18n/en.toml", "../../i18n/zh.toml"}, "en")
	require.NoError(t, err)

	ctx := WithLocalizer(context.Background(), i18n.NewLocalizer(catalog.Bundle, "en"))
	for _, key := range []string{
		"error.invalid_request", "error.storage", "error.system", "error.link_not_found",
		"error.code_allocation_exhausted", "error.target_url_required", "error.target_url_invalid",
		"error.date_invalid", "error.unauthorized", "error.file_required", "error.csv_invalid",
	} {
		assert.NotEqual(t, key, T(ctx, key, nil), "missing english message for %s", key)
	}
}
