package utils

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// MaxTargetURLLength 目标地址最大长度，与表结构一致
const MaxTargetURLLength = 2048

// ValidateUniqueCode 校验短码是否为定长字母数字
func ValidateUniqueCode(code string, length int) error {
	if code == "" {
		return fmt.Errorf("error.code_required")
	}
	if len(code) != length {
		return fmt.Errorf("error.code_invalid")
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return fmt.Errorf("error.code_invalid")
		}
	}
	return nil
}

// ValidateTargetURL 校验目标 URL 的合法性
func ValidateTargetURL(targetURL string) error {
	if strings.TrimSpace(targetURL) == "" {
		return fmt.Errorf("error.target_url_required")
	}

	if ContainsWhitespace(targetURL) {
		return fmt.Errorf("error.target_url_invalid")
	}

	u, err := url.ParseRequestURI(targetURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("error.target_url_invalid")
	}

	if len(targetURL) > MaxTargetURLLength {
		return fmt.Errorf("error.target_url_max_length")
	}
	return nil
}

func ContainsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
