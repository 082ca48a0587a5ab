package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", 15)

	token, expiresAt, err := tm.GenerateToken("profile-1", domain.RoleAgent)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if until := time.Until(expiresAt); until < 14*time.Minute || until > 16*time.Minute {
		t.Fatalf("unexpected expiry window: %v", until)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.ProfileID != "profile-1" {
		t.Fatalf("expected subject profile-1, got %s", claims.ProfileID)
	}
	if claims.Role != domain.RoleAgent {
		t.Fatalf("expected role agent, got %s", claims.Role)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 15).GenerateToken("profile-1", domain.RoleUser)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 15).ParseToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	if _, err := tm.ParseToken("not.a.token"); err == nil {
		t.Fatal("expected malformed token to be rejected")
	}
}
