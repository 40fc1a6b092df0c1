package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_Bcrypt(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"secret1", "correct horse battery staple", "päss wörd"} {
		hash, err := HashPassword(p, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword(%q) error: %v", p, err)
		}
		if !strings.HasPrefix(hash, "$2") {
			t.Fatalf("expected bcrypt digest, got %q", hash)
		}
		if !VerifyPassword(hash, p) {
			t.Fatalf("VerifyPassword failed for its own hash of %q", p)
		}
		if VerifyPassword(hash, p+"x") {
			t.Fatalf("VerifyPassword accepted wrong password for %q", p)
		}
	}
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-input", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same-input", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("two hashes of the same input must differ (random salt)")
	}
}

func TestVerifyPassword_LegacySHA256(t *testing.T) {
	t.Parallel()

	legacy := LegacySHA256("old-account-pass")
	if len(legacy) != 64 {
		t.Fatalf("legacy digest length = %d, want 64", len(legacy))
	}
	if !VerifyPassword(legacy, "old-account-pass") {
		t.Fatalf("legacy digest not accepted")
	}
	if VerifyPassword(legacy, "different-pass") {
		t.Fatalf("legacy digest accepted wrong password")
	}
}

func TestVerifyPassword_GarbageDigest(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"", "not-a-digest", "short", strings.Repeat("z", 63)} {
		if VerifyPassword(h, "anything") {
			t.Fatalf("digest %q must not verify", h)
		}
	}
}
