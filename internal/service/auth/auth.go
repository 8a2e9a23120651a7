package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/models"
	"github.com/nkiryanov/authservice/internal/repository"
	"github.com/nkiryanov/authservice/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during user authentication
	// BcryptHasher if not set
	Hasher PasswordHasher
}

// Refresh and access tokens lifecycle
type AuthService struct {
	tokens  *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
	logger  logger.Logger

	// Compared with when user not found, so both failures take the same time
	dummyHash string
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, storage repository.Storage, l logger.Logger) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	dummyHash, err := hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("hasher is not usable. Err: %w", err)
	}

	return &AuthService{
		tokens:    tokens,
		hasher:    hasher,
		storage:   storage,
		logger:    l,
		dummyHash: dummyHash,
	}, nil
}

// Return existed user's refresh token. It may be expired already
func (s *AuthService) GetRefresh(ctx context.Context, email string, password string) (models.RefreshToken, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return models.RefreshToken{}, err
	}

	return s.storage.Refresh().GetByUser(ctx, user.ID)
}

// Issue the first refresh token for user
// Every user has at most one token: get it with GetRefresh or exchange when expired
func (s *AuthService) CreateRefresh(ctx context.Context, email string, password string, role models.Role, adminSecret string) (models.RefreshToken, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return models.RefreshToken{}, err
	}

	if err := s.tokens.AuthorizeRole(role, adminSecret); err != nil {
		s.logger.Warn("refresh token with privileged role rejected", "user_id", user.ID, "role", role)
		return models.RefreshToken{}, err
	}

	var token models.RefreshToken
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		// Serializes concurrent creations for the same user
		if err := storage.User().LockUser(ctx, user.ID); err != nil {
			return err
		}

		_, err := storage.Refresh().GetByUser(ctx, user.ID)
		switch {
		case err == nil:
			return apperrors.ErrTokenAlreadyExists
		case !errors.Is(err, apperrors.ErrTokenNotFound):
			return err
		}

		signed, claims, err := s.tokens.MintRefresh(user, role)
		if err != nil {
			return err
		}

		token, err = storage.Refresh().Create(ctx, user.ID, signed, claims.ExpiresAt())
		return err
	})
	if err != nil {
		return models.RefreshToken{}, err
	}

	s.logger.Info("refresh token created", "user_id", user.ID, "role", role)
	return token, nil
}

// Replace stored refresh token with a new one
// Token may be expired, but it must be signed by us and stored exactly as presented
func (s *AuthService) ExchangeRefresh(ctx context.Context, token string) (models.RefreshToken, error) {
	claims, err := s.tokens.RequireAny(token)
	if err != nil {
		s.logger.Info("refresh token rejected", "cause", err.Error())
		return models.RefreshToken{}, err
	}

	// Role was authorized when the token was created, it's signed so can't be forged
	if err := s.tokens.AuthorizeRole(claims.Role, s.tokens.SecretForRole(claims.Role)); err != nil {
		return models.RefreshToken{}, err
	}

	owner := models.User{ID: claims.UserID, Email: claims.Email}
	signed, newClaims, err := s.tokens.MintRefresh(owner, claims.Role)
	if err != nil {
		return models.RefreshToken{}, err
	}

	updated, err := s.storage.Refresh().UpdateByToken(ctx, token, signed, newClaims.ExpiresAt())
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			s.logger.Warn("exchanged token is not stored", "user_id", claims.UserID)
		}
		return models.RefreshToken{}, err
	}

	s.logger.Info("refresh token exchanged", "user_id", claims.UserID)
	return updated, nil
}

// Issue short lived access token by fresh refresh token
// User must be verified and active
func (s *AuthService) CreateAccess(ctx context.Context, token string) (models.AccessToken, error) {
	claims, err := s.tokens.RequireType(token, models.TokenTypeRefresh)
	if err != nil {
		s.logger.Info("refresh token rejected", "cause", err.Error())
		return models.AccessToken{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.AccessToken{}, apperrors.ErrUserNotEligible
	case err != nil:
		return models.AccessToken{}, err
	case !user.IsVerified || !user.IsActive:
		s.logger.Info("access token denied", "user_id", user.ID, "is_verified", user.IsVerified, "is_active", user.IsActive)
		return models.AccessToken{}, apperrors.ErrUserNotEligible
	}

	return s.tokens.MintAccess(claims, user)
}

// Find user by email and check password
// Unknown email and wrong password are indistinguishable for caller
func (s *AuthService) authenticate(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.User{}, apperrors.ErrAuthenticationFailed
	case err != nil:
		return models.User{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrAuthenticationFailed
	}

	return user, nil
}
