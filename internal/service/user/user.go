package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/models"
	"github.com/nkiryanov/authservice/internal/repository"
	"github.com/nkiryanov/authservice/internal/service/auth"
	"github.com/nkiryanov/authservice/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/authservice/internal/service/mailer"
)

const (
	defaultCodeTTL        = 5 * time.Minute
	defaultCodeLength     = 6
	defaultPasswordLength = 12
)

type Config struct {
	// BcryptHasher if not set
	Hasher auth.PasswordHasher

	// Verification code lifetime and length
	CodeTTL    time.Duration
	CodeLength int

	// Length of password generated on reset
	PasswordLength int
}

type UserService struct {
	hasher         auth.PasswordHasher
	codeTTL        time.Duration
	codeLength     int
	passwordLength int

	tokens  *tokenmanager.TokenManager
	storage repository.Storage
	codes   repository.CodeStore
	mail    mailer.Sender
	logger  logger.Logger
}

func NewService(
	cfg Config,
	tokens *tokenmanager.TokenManager,
	storage repository.Storage,
	codes repository.CodeStore,
	mail mailer.Sender,
	l logger.Logger,
) (*UserService, error) {
	if tokens == nil || storage == nil || codes == nil || mail == nil {
		return nil, errors.New("token manager, storage, code store and mailer must not be nil")
	}

	if cfg.Hasher == nil {
		cfg.Hasher = auth.BcryptHasher{}
	}
	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = defaultCodeTTL
	}
	if cfg.CodeLength == 0 {
		cfg.CodeLength = defaultCodeLength
	}
	if cfg.PasswordLength == 0 {
		cfg.PasswordLength = defaultPasswordLength
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &UserService{
		hasher:         cfg.Hasher,
		codeTTL:        cfg.CodeTTL,
		codeLength:     cfg.CodeLength,
		passwordLength: cfg.PasswordLength,
		tokens:         tokens,
		storage:        storage,
		codes:          codes,
		mail:           mail,
		logger:         l,
	}, nil
}

func codeSentMessage(email string) string {
	return fmt.Sprintf("Your verification code was sent to %s.", email)
}

const passwordResetMessage = "Password was changed. Check your email to get it."

// Create not verified user and send verification code to the email
// Role other than USER requires admin code
// User is not created if code could not be sent
func (s *UserService) Register(ctx context.Context, email string, password string, role models.Role, adminCode string) (models.User, string, error) {
	if err := s.tokens.AuthorizeRole(role, adminCode); err != nil {
		s.logger.Warn("registration with privileged role rejected", "email", email, "role", role)
		return models.User{}, "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("can't use this as password, Err: %w", err)
	}

	var user models.User
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		user, err = storage.User().CreateUser(ctx, email, hash, role)
		if err != nil {
			return err
		}

		return s.sendCode(ctx, user.Email)
	})
	if err != nil {
		return models.User{}, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, codeSentMessage(user.Email), nil
}

// Send new verification code to refresh token owner
// Previous code is not valid any more
func (s *UserService) SendVerificationCode(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.RequireType(token, models.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	if err := s.sendCode(ctx, claims.Email); err != nil {
		return "", err
	}

	return codeSentMessage(claims.Email), nil
}

// Mark refresh token owner verified if code matches
// Code may be tried once: it's consumed even on mismatch
func (s *UserService) Verify(ctx context.Context, token string, code string) (models.User, error) {
	claims, err := s.tokens.RequireType(token, models.TokenTypeRefresh)
	if err != nil {
		return models.User{}, err
	}

	stored, err := s.codes.Consume(ctx, claims.Email)
	if err != nil {
		return models.User{}, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		s.logger.Info("verification code mismatch", "user_id", claims.UserID)
		return models.User{}, apperrors.ErrVerificationCodeInvalid
	}

	user, err := s.storage.User().SetVerified(ctx, claims.UserID)
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user verified", "user_id", user.ID)
	return user, nil
}

// Replace password of refresh token owner with generated one and send it by email
func (s *UserService) ResetPassword(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.RequireType(token, models.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	password, err := randomString(s.passwordLength)
	if err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("can't hash generated password, Err: %w", err)
	}

	// Password is changed only if it was sent
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		if err := storage.User().UpdatePasswordHash(ctx, claims.UserID, hash); err != nil {
			return err
		}

		return s.mail.Send(ctx, mailer.Message{
			To:      claims.Email,
			Subject: "Auth service: Password reset",
			Body:    fmt.Sprintf("Your new password: %s", password),
		})
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("password reset", "user_id", claims.UserID)
	return passwordResetMessage, nil
}

// Refresh token owner
func (s *UserService) Me(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.RequireType(token, models.TokenTypeRefresh)
	if err != nil {
		return models.User{}, err
	}

	return s.storage.User().GetUserByID(ctx, claims.UserID)
}

// Users matched by filter. Available for any role but USER
func (s *UserService) List(ctx context.Context, token string, filter models.UserFilter) ([]models.User, error) {
	if _, err := s.tokens.RequireType(token, models.TokenTypeRefresh); err != nil {
		return nil, err
	}

	if _, err := s.tokens.RequireRoleNotUser(token); err != nil {
		return nil, err
	}

	users, err := s.storage.User().ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	return users, nil
}

func (s *UserService) sendCode(ctx context.Context, email string) error {
	code, err := randomString(s.codeLength)
	if err != nil {
		return err
	}

	if err := s.codes.Save(ctx, email, code, s.codeTTL); err != nil {
		return err
	}

	return s.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Auth service: Verification code",
		Body:    fmt.Sprintf("Your verification code is: %s\nThis code will be active only for %d minutes.", code, int(s.codeTTL.Minutes())),
	})
}
