package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/authservice/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string, role models.Role) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// List users matched by filter, ordered by creation time
	// Empty result is not an error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)

	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	SetVerified(ctx context.Context, userID uuid.UUID) (models.User, error)

	// Lock user row till the end of transaction
	// Makes sense only within Storage.InTx
	LockUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken repository interface
// Every user has at most one refresh token, it's replaced in place on exchange
type RefreshTokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (models.RefreshToken, error)

	// Return user's token even it expired
	// If there is no token must return apperrors.ErrTokenNotFound
	GetByUser(ctx context.Context, userID uuid.UUID) (models.RefreshToken, error)

	// Replace token only if stored token equals to old one
	// If nothing replaced must return apperrors.ErrTokenNotFound
	UpdateByToken(ctx context.Context, oldToken string, newToken string, expiresAt time.Time) (models.RefreshToken, error)
}

type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo

	// Run fn within transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

// Short lived one-time codes store
type CodeStore interface {
	Save(ctx context.Context, email string, code string, ttl time.Duration) error

	// Return code and remove it from store
	// If there is no code (or it expired) must return apperrors.ErrVerificationCodeInvalid
	Consume(ctx context.Context, email string) (string, error)
}
