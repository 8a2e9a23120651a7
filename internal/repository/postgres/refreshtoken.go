package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const createToken = `-- name: CreateRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, token, created_at, expires_at
`

func (r *RefreshTokenRepo) Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, createToken, uuid.New(), userID, token, expiresAt)
	t, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return t, apperrors.ErrTokenAlreadyExists
		}

		return t, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

const getTokenByUser = `-- name: GetRefreshTokenByUser
SELECT id, user_id, token, created_at, expires_at
FROM refresh_tokens
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1
`

// Get user's token
// It returns token even it expired
func (r *RefreshTokenRepo) GetByUser(ctx context.Context, userID uuid.UUID) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getTokenByUser, userID)
	return collectRefreshToken(rows)
}

// Row is matched by exact old token, so only one of concurrent updates wins:
// others re-check predicate after the winner commits and match nothing
// Replacing token with itself matches nothing too, otherwise the token could be reused forever
const updateTokenByToken = `-- name: UpdateRefreshTokenByToken
UPDATE refresh_tokens
SET token = $2, expires_at = $3
WHERE token = $1 AND token <> $2
RETURNING id, user_id, token, created_at, expires_at
`

func (r *RefreshTokenRepo) UpdateByToken(ctx context.Context, oldToken string, newToken string, expiresAt time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, updateTokenByToken, oldToken, newToken, expiresAt)
	return collectRefreshToken(rows)
}

func collectRefreshToken(rows pgx.Rows) (models.RefreshToken, error) {
	t, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, pgx.ErrNoRows):
		return t, apperrors.ErrTokenNotFound
	default:
		return t, fmt.Errorf("db error: %w", err)
	}
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}
