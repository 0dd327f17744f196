package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/travel-pay/travel_pay/internal/config"
	"github.com/travel-pay/travel_pay/internal/identity"
)

func TestIssueAndVerify(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}
	svc := NewService(cfg)

	token, err := svc.Issue(identity.User{ID: "u1", Name: "Arjun", Phone: "+919876543210"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseAndVerifyHS256(token.AccessToken, []byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims["sub"] != "u1" {
		t.Fatalf("expected sub u1, got %v", claims["sub"])
	}
	if claims["phone"] != "+919876543210" {
		t.Fatalf("unexpected phone claim %v", claims["phone"])
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := NewService(config.Config{JWTSecret: "right", AccessTokenTTL: time.Hour})
	token, err := svc.Issue(identity.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := ParseAndVerifyHS256(token.AccessToken, []byte("wrong")); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewService(config.Config{JWTSecret: "s", AccessTokenTTL: -time.Minute})
	token, err := svc.Issue(identity.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := ParseAndVerifyHS256(token.AccessToken, []byte("s")); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
