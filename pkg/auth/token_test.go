package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/coursehive/coursehive-backend/pkg/config"
	"github.com/coursehive/coursehive-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "coursehive",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: userID,
		Role:   enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.ActorRoleAdmin {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be populated")
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRole("superuser"),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid actor role") {
		t.Fatalf("expected invalid role error, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	mintCfg := testJWTConfig()
	signed, err := MintAccessToken(mintCfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	parseCfg := mintCfg
	parseCfg.Issuer = "someone-else"
	if _, err := ParseAccessToken(parseCfg, signed); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseRejectsTamperedSecret(t *testing.T) {
	signed, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	cfg := testJWTConfig()
	cfg.Secret = "other-secret"
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected signature error")
	}
}
