package tokenmanager

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// HMAC algorithms only: token is signed and verified with the same secret
var supportedAlgs = []string{"HS256", "HS384", "HS512"}

// Token manager with sensible default
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Secret to get token with role other than USER
	// Required to be set
	AdminSecret string

	// Clock, time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	key []byte
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	adminSecret string
	now         func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.AdminSecret == "" {
		return nil, errors.New("admin secret must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if !slices.Contains(supportedAlgs, cfg.Alg) {
		return nil, fmt.Errorf("unsupported signing algorithm %q, expected one of %v", cfg.Alg, supportedAlgs)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		key:         []byte(cfg.SecretKey),
		alg:         jwt.GetSigningMethod(cfg.Alg),
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		adminSecret: cfg.AdminSecret,
		now:         cfg.Now,
	}, nil
}

// Sign claims as is. No semantic checks
func (m *TokenManager) Encode(claims models.Claims) (string, error) {
	token, err := jwt.NewWithClaims(m.alg, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("error while signing token. Err: %w", err)
	}
	return token, nil
}

// Verify signature and return claims
// Time is not checked here, check it with Require* methods
//
// Returns:
//   - apperrors.ErrTokenInvalidSignature if token signed by other key or algorithm (including 'none')
//     or signature segment is not a canonical base64url string
//   - apperrors.ErrTokenMalformed if token could not be parsed or required claims missing
func (m *TokenManager) Decode(token string) (models.Claims, error) {
	var claims models.Claims

	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithStrictDecoding(),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return claims, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed) && parsed != nil && parsed.Method != nil:
		// Header and payload are parsed already, so it is the signature segment that is broken
		return claims, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalidSignature, err)
	default:
		return claims, fmt.Errorf("%w: %w", apperrors.ErrTokenMalformed, err)
	}

	if err := validateClaims(claims); err != nil {
		return claims, fmt.Errorf("%w: %w", apperrors.ErrTokenMalformed, err)
	}

	return claims, nil
}

func validateClaims(c models.Claims) error {
	switch {
	case c.UserID == uuid.Nil:
		return errors.New("user_id is required")
	case c.Email == "":
		return errors.New("email is required")
	case !c.Role.Valid():
		return fmt.Errorf("unknown role %q", c.Role)
	case c.Expires <= 0:
		return errors.New("expires is required")
	case !c.TokenType.Valid():
		return fmt.Errorf("unknown token type %q", c.TokenType)
	default:
		return nil
	}
}

// Check the secret needed to get token for role
// USER role requires no secret at all
func (m *TokenManager) AuthorizeRole(role models.Role, secret string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidAdminSecret, role)
	}

	if role == models.RoleUser {
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(m.adminSecret)) != 1 {
		return apperrors.ErrInvalidAdminSecret
	}

	return nil
}

// Secret to pass role check. Exchange flow takes role from already signed token,
// so the secret is derived rather than presented by the caller
func (m *TokenManager) SecretForRole(role models.Role) string {
	if role == models.RoleUser {
		return ""
	}
	return m.adminSecret
}

// Mint signed refresh token for user
func (m *TokenManager) MintRefresh(user models.User, role models.Role) (string, models.Claims, error) {
	claims := models.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      role,
		Expires:   models.EpochSeconds(m.now().Add(m.refreshTTL)),
		TokenType: models.TokenTypeRefresh,
		TokenID:   uuid.NewString(),
	}

	token, err := m.Encode(claims)
	return token, claims, err
}

// Mint signed access token
// Identity comes from refresh claims, status from the live user record
func (m *TokenManager) MintAccess(refresh models.Claims, user models.User) (models.AccessToken, error) {
	claims := models.Claims{
		UserID:     refresh.UserID,
		Email:      refresh.Email,
		Role:       refresh.Role,
		Expires:    models.EpochSeconds(m.now().Add(m.accessTTL)),
		TokenType:  models.TokenTypeAccess,
		TokenID:    uuid.NewString(),
		IsVerified: &user.IsVerified,
		IsActive:   &user.IsActive,
	}

	token, err := m.Encode(claims)
	if err != nil {
		return models.AccessToken{}, err
	}

	return models.AccessToken{Token: token, Claims: claims}, nil
}
