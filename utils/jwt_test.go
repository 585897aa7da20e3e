package utils

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "jane@example.com", "provider", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "provider" || claims.Email != "jane@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if time.Until(claims.ExpiresAt) <= 0 {
		t.Errorf("expected a future expiry, got %v", claims.ExpiresAt)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("user-1", "", "customer", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("hash should be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("different tokens should hash differently")
	}
}
