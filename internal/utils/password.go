package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash using the given cost. bcrypt generates
// a fresh random salt per call.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored digest against a plain password. Digests
// produced by bcrypt are recognized by their "$2" prefix; anything that
// looks like a 64-char hex string is treated as a legacy unsalted sha256
// digest. The legacy path exists only so accounts created before bcrypt was
// available can still log in; new hashes are always bcrypt.
func VerifyPassword(hash, plain string) bool {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}
	if len(hash) == 64 {
		sum := sha256.Sum256([]byte(plain))
		want := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(hash), []byte(want)) == 1
	}
	return false
}

// LegacySHA256 returns the hex-encoded sha256 of the plaintext. Kept for
// verifying the fallback path; never used when writing new hashes.
func LegacySHA256(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
