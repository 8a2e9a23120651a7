package models

import (
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeAccess  TokenType = "access"
)

func (t TokenType) Valid() bool {
	return t == TokenTypeRefresh || t == TokenTypeAccess
}

// Claims is the payload of every token issued by the service
// Expires is unix time in seconds with fractional part
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Expires   float64   `json:"expires"`
	TokenType TokenType `json:"token_type"`

	// Random per issued token: tokens minted within the same clock tick never collide
	TokenID string `json:"jti,omitempty"`

	// Set for access tokens only: user status at the moment token was issued
	IsVerified *bool `json:"is_verified,omitempty"`
	IsActive   *bool `json:"is_active,omitempty"`
}

// ExpiresAt returns Expires as time.Time
func (c Claims) ExpiresAt() time.Time {
	sec, frac := math.Modf(c.Expires)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// Claims intentionally expose no registered time claims: jwt parser must not validate time
// Expiration is checked by token manager against 'expires' field
var _ jwt.Claims = Claims{}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetSubject() (string, error)                  { return c.UserID.String(), nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Unix time in seconds with fractional part as used in 'expires' claim
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Access token is never stored, it issued on demand from valid refresh token
type AccessToken struct {
	Token  string
	Claims Claims
}
