// Package auth mints and parses the store's access tokens. An access token
// carries the true actor, the tenant, and (while an impersonation is active)
// the impersonated user; the scoped token is the only thing that changes when
// an impersonation starts or stops.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/domain"
)

// Claims are the registered claims plus the OwnCent identity claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID             string      `json:"uid"`
	TenantID           string      `json:"tid"`
	Role               domain.Role `json:"role"`
	ImpersonatedUserID string      `json:"imp,omitempty"`
	// ImpersonationReason travels with the scoped token so the session
	// banner can show why the impersonation was started.
	ImpersonationReason string `json:"rsn,omitempty"`
}

// Impersonating reports whether the token is a scoped impersonation token.
func (c *Claims) Impersonating() bool {
	return c.ImpersonatedUserID != ""
}

// GenerateToken signs an access token for the given identity. A non-empty
// impersonatedUserID produces a scoped impersonation token; reason is
// carried only on scoped tokens.
func GenerateToken(userID, tenantID string, role domain.Role, impersonatedUserID, reason string, secretKey []byte, validityDuration time.Duration) (string, error) {
	if impersonatedUserID == "" {
		reason = ""
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:              userID,
		TenantID:            tenantID,
		Role:                role,
		ImpersonatedUserID:  impersonatedUserID,
		ImpersonationReason: reason,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates the token signature and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired so the HTTP layer can tell the
// client a refresh is worthwhile; every other failure is ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
