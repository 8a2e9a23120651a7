package tokenmanager

import (
	"fmt"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/models"
)

// Checks always go in order: signature, expiration, type or role

// Signature only. Expired token is ok
func (m *TokenManager) RequireAny(token string) (models.Claims, error) {
	return m.Decode(token)
}

// Token must be signed and not expired
// Token expires at the very moment of 'expires'
func (m *TokenManager) RequireFresh(token string) (models.Claims, error) {
	claims, err := m.Decode(token)
	if err != nil {
		return claims, err
	}

	if models.EpochSeconds(m.now()) >= claims.Expires {
		return claims, apperrors.ErrTokenExpired
	}

	return claims, nil
}

func (m *TokenManager) RequireType(token string, expected models.TokenType) (models.Claims, error) {
	claims, err := m.RequireFresh(token)
	if err != nil {
		return claims, err
	}

	if claims.TokenType != expected {
		return claims, fmt.Errorf("%w: %s token required, got %s", apperrors.ErrTokenWrongType, expected, claims.TokenType)
	}

	return claims, nil
}

// Fresh token of any role but USER
func (m *TokenManager) RequireRoleNotUser(token string) (models.Claims, error) {
	claims, err := m.RequireFresh(token)
	if err != nil {
		return claims, err
	}

	if claims.Role == models.RoleUser {
		return claims, apperrors.ErrInsufficientRole
	}

	return claims, nil
}
