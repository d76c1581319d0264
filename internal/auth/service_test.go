package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	svc, err := NewTokenService("pomorix-test", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	token, err := svc.Issue("user-1", "jo@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("subject = %s, want user-1", userID)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("pomorix-test", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	if _, err := svc.Verify("not.a.token"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	a, _ := NewTokenService("pomorix-test", time.Hour)
	b, _ := NewTokenService("pomorix-test", time.Hour)

	token, err := a.Issue("user-1", "jo@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken for foreign signature", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	a, _ := NewTokenService("someone-else", time.Hour)
	token, err := a.Issue("user-1", "jo@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	b := &TokenService{key: a.key, kid: a.kid, issuer: "pomorix-test", ttl: time.Hour}
	if _, err := b.Verify(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken for issuer mismatch", err)
	}
}

func TestJWKSShape(t *testing.T) {
	svc, err := NewTokenService("pomorix-test", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	doc := svc.JWKS()
	keys, ok := doc["keys"].([]any)
	if !ok || len(keys) != 1 {
		t.Fatalf("jwks keys = %v, want one entry", doc["keys"])
	}
	jwk := keys[0].(map[string]any)
	if jwk["kty"] != "RSA" || jwk["alg"] != "RS256" || jwk["kid"] == "" {
		t.Errorf("jwk fields wrong: %v", jwk)
	}
}
