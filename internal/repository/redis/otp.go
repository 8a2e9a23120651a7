package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkiryanov/authservice/internal/apperrors"
)

const otpKeyPrefix = "otp:"

// One-time codes store: one code per email, last saved wins
type CodeStore struct {
	Client redis.Cmdable
}

func NewCodeStore(client redis.Cmdable) *CodeStore {
	return &CodeStore{Client: client}
}

func (s *CodeStore) Save(ctx context.Context, email string, code string, ttl time.Duration) error {
	if err := s.Client.Set(ctx, otpKeyPrefix+email, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Consume returns code and removes it, so every code may be used once
func (s *CodeStore) Consume(ctx context.Context, email string) (string, error) {
	code, err := s.Client.GetDel(ctx, otpKeyPrefix+email).Result()

	switch {
	case err == nil:
		return code, nil
	case errors.Is(err, redis.Nil):
		return "", apperrors.ErrVerificationCodeInvalid
	default:
		return "", fmt.Errorf("redis error: %w", err)
	}
}
