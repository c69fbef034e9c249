package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("u-1", "tenant-demo", domain.RoleOwner, "", "", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != "u-1" || claims.TenantID != "tenant-demo" || claims.Role != domain.RoleOwner {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Impersonating() {
		t.Fatalf("unexpected impersonation claim")
	}
}

func TestGenerateAndParse_ImpersonationClaim(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("u-owner", "tenant-demo", domain.RoleOwner, "u-target", "billing dispute", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if !claims.Impersonating() || claims.ImpersonatedUserID != "u-target" {
		t.Fatalf("expected impersonation claim, got %+v", claims)
	}
	if claims.ImpersonationReason != "billing dispute" {
		t.Fatalf("reason must round-trip through the token: %+v", claims)
	}
	if claims.UserID != "u-owner" {
		t.Fatalf("true actor must stay in the token: %+v", claims)
	}
}

func TestGenerateToken_ReasonDroppedWithoutImpersonation(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("u-1", "tenant-demo", domain.RoleOwner, "", "stray reason", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.ImpersonationReason != "" {
		t.Fatalf("plain tokens must not carry a reason: %+v", claims)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u-1", "tenant-demo", domain.RoleManager, "", "", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u-1", "tenant-demo", domain.RoleOwner, "", "", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
