package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"     // secure random number generation
	"encoding/base64" // URL-safe encoding for emailed tokens
	"encoding/hex"    // hex encoding for session tokens
)

// NewSessionToken returns a bearer token generated from 32 bytes of
// cryptographically secure randomness, hex encoded (64 characters).
func NewSessionToken() (string, error) {
	return randomHex(32)
}

// NewURLToken returns a URL-safe token generated from 32 bytes of secure
// randomness, used for email verification and password reset links.
func NewURLToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
