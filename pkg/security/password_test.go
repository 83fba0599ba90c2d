package security_test

import (
	"strings"
	"testing"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
	if security.NeedsRehash(hash) {
		t.Fatal("argon2id hashes never need a rehash")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("expected empty password to fail")
	}
}

func TestVerifyPasswordAcceptsLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	ok, err := security.VerifyPassword("password123", string(legacy))
	if err != nil || !ok {
		t.Fatalf("expected legacy hash to verify, ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("wrong", string(legacy))
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}
	if !security.NeedsRehash(string(legacy)) {
		t.Fatal("bcrypt hashes should be upgraded")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := security.VerifyPassword("irrelevant", "$2a$10$short"); err == nil {
		t.Fatal("expected error for truncated bcrypt hash")
	}
}

func TestVerifyPasswordRejectsTamperedArgonHeader(t *testing.T) {
	hash, err := security.HashPassword("password123", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	for _, bad := range []string{
		strings.Replace(hash, "v=19", "v=16", 1),
		strings.Replace(hash, "m=32768,t=1,p=1", "m=32768;t=1", 1),
		hash[:strings.LastIndex(hash, "$")],
	} {
		if _, err := security.VerifyPassword("password123", bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
