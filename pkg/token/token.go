package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	errGenerateRandomBytesFmt = "failed to generate random bytes: %w"
	errByteLengthPositiveFmt  = "byteLength must be positive"
)

func random(byteLength int) ([]byte, error) {
	if byteLength <= 0 {
		return nil, fmt.Errorf(errByteLengthPositiveFmt)
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return nil, fmt.Errorf(errGenerateRandomBytesFmt, err)
	}
	return bytes, nil
}

// URLSafe returns byteLength random bytes, base64url encoded.
func URLSafe(byteLength int) (string, error) {
	bytes, err := random(byteLength)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// Hex returns byteLength random bytes, hex encoded.
func Hex(byteLength int) (string, error) {
	bytes, err := random(byteLength)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Equal compares two tokens in constant time.
func Equal(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
