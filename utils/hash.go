package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

func CalculateHash(r io.Reader) (string, error) {
	h := sha256.New()
	_, err := io.Copy(h, r)
	return hex.EncodeToString(h.Sum(nil)), err
}

// HashText is the hex SHA-256 of s, used as the cache identity of a text segment.
func HashText(s string) string {
	sum, _ := CalculateHash(strings.NewReader(s))
	return sum
}
