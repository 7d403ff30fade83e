package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := svc.GenerateToken("user-42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("ValidateToken returned %q, want user-42", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").GenerateToken("user-42")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenService("secret-b").ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret")
	claims := jwt.MapClaims{
		"sub": "user-42",
		"iat": time.Now().Add(-48 * time.Hour).Unix(),
		"exp": time.Now().Add(-24 * time.Hour).Unix(),
		"iss": "chatapp-backend",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestTokenGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ValidateToken(bad); err == nil {
			t.Fatalf("ValidateToken(%q) accepted garbage", bad)
		}
	}
}
