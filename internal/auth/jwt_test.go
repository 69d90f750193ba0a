package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("owner", "owner@example.com", RoleOwner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "owner" || claims.Email != "owner@example.com" || claims.Role != RoleOwner {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
	if _, err := NewJWTManager("other", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected parse error for foreign secret")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("owner", "", RoleOwner); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}

func TestJWTManager_UnknownRole(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	if _, err := manager.GenerateToken("x", "", "admin"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	token, err := manager.GenerateToken("viewer", "", RoleViewer)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	manager.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestNewJWTManager_DefaultTTL(t *testing.T) {
	if got := NewJWTManager("s", 0).TTL(); got != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %s", got)
	}
}
