package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "lastros-pos",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()
	tenantID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:   userID,
		TenantID: tenantID,
		Email:    "admin@lastros.com",
		Role:     enums.UserRoleAdmin,
		JTI:      "session-1",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID || claims.Subject != userID.String() {
		t.Fatalf("user id not preserved: %+v", claims)
	}
	if claims.TenantID != tenantID {
		t.Fatalf("expected tenant %s, got %s", tenantID, claims.TenantID)
	}
	if claims.Role != enums.UserRoleAdmin || claims.Email != "admin@lastros.com" {
		t.Fatalf("unexpected role/email %s %s", claims.Role, claims.Email)
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti session-1, got %q", claims.ID)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.Time)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(testJWTConfig(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected generated uuid jti, got %q", claims.ID)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	base := AccessTokenPayload{UserID: uuid.New(), TenantID: uuid.New(), Role: enums.UserRoleUser}

	missingTenant := base
	missingTenant.TenantID = uuid.Nil
	if _, err := MintAccessToken(cfg, time.Now(), missingTenant); err == nil {
		t.Fatal("expected missing tenant to fail")
	}

	badRole := base
	badRole.Role = "OWNER"
	if _, err := MintAccessToken(cfg, time.Now(), badRole); err == nil {
		t.Fatal("expected invalid role to fail")
	}

	noSecret := cfg
	noSecret.Secret = ""
	if _, err := MintAccessToken(noSecret, time.Now(), base); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(), TenantID: uuid.New(), Role: enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "other-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{
		UserID: uuid.New(), TenantID: uuid.New(), Role: enums.UserRoleUser, JTI: "old",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow expired parse: %v", err)
	}
	if claims.ID != "old" {
		t.Fatalf("unexpected jti %q", claims.ID)
	}
}

func TestParseAccessTokenRejectsForeignClaims(t *testing.T) {
	cfg := testJWTConfig()
	claims := jwt.MapClaims{
		"sub":       uuid.NewString(),
		"email":     "someone@lastros.com",
		"tenantId":  uuid.NewString(),
		"iss":       cfg.Issuer,
		"exp":       time.Now().Add(time.Hour).Unix(),
		"user_role": "ADMIN",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected token without tenant_id/user_id to be rejected")
	}
}
