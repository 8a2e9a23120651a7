package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, email, password_hash, role, is_verified, is_active`

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, email string, hashedPassword string, role models.Role) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), email, hashedPassword, string(role))
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

// Every filter field is optional: NULL argument disables the predicate
const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
WHERE ($1::uuid IS NULL OR id = $1)
  AND ($2::text IS NULL OR email = $2)
  AND ($3::text IS NULL OR role = $3)
  AND ($4::boolean IS NULL OR is_verified = $4)
  AND ($5::boolean IS NULL OR is_active = $5)
ORDER BY created_at, id
`

func (r *UserRepo) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var role *string
	if filter.Role != nil {
		s := string(*filter.Role)
		role = &s
	}

	rows, _ := r.DB.Query(ctx, listUsers, filter.ID, filter.Email, role, filter.IsVerified, filter.IsActive)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

const updatePasswordHash = `-- name: UpdatePasswordHash
UPDATE users SET password_hash = $2
WHERE id = $1
`

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	tag, err := r.DB.Exec(ctx, updatePasswordHash, userID, hashedPassword)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

const setVerified = `-- name: SetVerified
UPDATE users SET is_verified = TRUE
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetVerified(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setVerified, userID)
	return collectUser(rows)
}

const lockUser = `-- name: LockUser
SELECT id FROM users
WHERE id = $1
FOR UPDATE
`

func (r *UserRepo) LockUser(ctx context.Context, userID uuid.UUID) error {
	rows, _ := r.DB.Query(ctx, lockUser, userID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrUserNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.HashedPassword, &role, &u.IsVerified, &u.IsActive)
	u.Role = models.Role(role)
	return u, err
}
