package security

import (
	"testing"
	"time"

	"github.com/digiticket/digiticket/internal/core/domain"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", 15*time.Minute)

	token, err := issuer.Issue(42, domain.RoleClient)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected subject 42, got %d", claims.UserID)
	}
	if claims.Role != domain.RoleClient {
		t.Fatalf("expected role CLIENT, got %s", claims.Role)
	}
	if claims.ExpiresAt != claims.IssuedAt+900 {
		t.Fatalf("expected exp = iat + 900s, got iat=%d exp=%d", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", 900000*time.Millisecond)
	issuer.now = func() time.Time { return issuedAt }

	token, err := issuer.Issue(1, domain.RoleClient)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// one millisecond before expiry: still valid
	issuer.now = func() time.Time { return issuedAt.Add(899999 * time.Millisecond) }
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	// one millisecond after expiry: rejected
	issuer.now = func() time.Time { return issuedAt.Add(900001 * time.Millisecond) }
	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestTokenIssuer_WrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	other := NewTokenIssuer("different", time.Minute)

	token, err := issuer.Issue(7, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenIssuer_GarbageRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)

	if _, err := issuer.Verify("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
