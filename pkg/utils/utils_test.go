package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := RandomCode(8)
		require.NoError(t, err)
		require.Len(t, code, 8)
		require.NoError(t, ValidateUniqueCode(code, 8))
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestValidateUniqueCode(t *testing.T) {
	assert.NoError(t, ValidateUniqueCode("aB3dE6gH", 8))
	assert.EqualError(t, ValidateUniqueCode("", 8), "error.code_required")
	assert.EqualError(t, ValidateUniqueCode("short", 8), "error.code_invalid")
	assert.EqualError(t, ValidateUniqueCode("aB3dE6g-", 8), "error.code_invalid")
}

func TestValidateTargetURL(t *testing.T) {
	assert.NoError(t, ValidateTargetURL("https://example.com"))
	assert.NoError(t, ValidateTargetURL("http://example.com/path?q=1"))
	assert.EqualError(t, ValidateTargetURL(""), "error.target_url_required")
	assert.EqualError(t, ValidateTargetURL("   "), "error.target_url_required")
	assert.EqualError(t, ValidateTargetURL("not a url"), "error.target_url_invalid")
	assert.EqualError(t, ValidateTargetURL("ftp://example.com"), "error.target_url_invalid")
	assert.EqualError(t, ValidateTargetURL("https://example.com/"+strings.Repeat("a", MaxTargetURLLength)), "error.target_url_max_length")
}
