package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Bad email or password. Deliberately does not tell which one was wrong
	ErrAuthenticationFailed = errors.New("user not found or invalid user data")

	// User is not verified or not active when access token requested
	ErrUserNotEligible = errors.New("user must be verified and active")

	ErrVerificationCodeInvalid = errors.New("verification code is invalid or expired")

	ErrInvalidAdminSecret = errors.New("invalid admin secret")
	ErrInsufficientRole   = errors.New("invalid role type, admin required")

	ErrTokenAlreadyExists = errors.New("token already exists, get active token or exchange expired")
	ErrTokenNotFound      = errors.New("token not found")

	// Umbrella for every problem with presented token itself
	// Use errors.Is(err, ErrInvalidToken) to catch all of them at once
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenInvalidSignature = fmt.Errorf("%w: invalid signature", ErrInvalidToken)
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenWrongType        = fmt.Errorf("%w: wrong token type", ErrInvalidToken)
)
