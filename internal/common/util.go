package common

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// MakeRandURLToken returns size random bytes encoded with unpadded base64url.
// Tokens shorter than 16 bytes are refused.
func MakeRandURLToken(size int) (string, error) {
	if size < 16 {
		return "", errors.New("token size too small")
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
