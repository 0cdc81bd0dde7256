package utils

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet 短码字符集（62 个字符）
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(CodeAlphabet)))

// RandomCode 生成指定长度的随机短码，每位均匀取自 CodeAlphabet
func RandomCode(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
