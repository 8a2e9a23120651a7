package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/models"
	"github.com/nkiryanov/authservice/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), "user@example.com", "hashedpassword123", models.RoleUser)

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID)
			assert.Equal(t, "user@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Equal(t, models.RoleUser, user.Role)
			assert.False(t, user.IsVerified, "new user is not verified")
			assert.True(t, user.IsActive, "new user is active")
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user twice fail", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), "twice@example.com", "hash", models.RoleUser)
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), "twice@example.com", "other-hash", models.RoleAdmin)

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "findbyid@example.com", "hashedpassword123", models.RoleStaffer)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "findbyemail@example.com", "hashedpassword123", models.RoleUser)
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), created.Email)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nonexistent@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("set verified", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "verify@example.com", "hash", models.RoleUser)
			require.NoError(t, err)

			got, err := r.SetVerified(t.Context(), created.ID)

			require.NoError(t, err)
			assert.True(t, got.IsVerified)
			_, err = r.SetVerified(t.Context(), uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update password hash", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "reset@example.com", "old-hash", models.RoleUser)
			require.NoError(t, err)

			err = r.UpdatePasswordHash(t.Context(), created.ID, "new-hash")

			require.NoError(t, err)
			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, "new-hash", got.HashedPassword)
			assert.ErrorIs(t, r.UpdatePasswordHash(t.Context(), uuid.New(), "hash"), apperrors.ErrUserNotFound)
		})
	})

	t.Run("lock user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), "lock@example.com", "hash", models.RoleUser)
			require.NoError(t, err)

			require.NoError(t, r.LockUser(t.Context(), created.ID))
			assert.ErrorIs(t, r.LockUser(t.Context(), uuid.New()), apperrors.ErrUserNotFound)
		})
	})
}

func Test_UserRepo_ListUsers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
		r := UserRepo{DB: tx}
		admin, err := r.CreateUser(t.Context(), "admin@example.com", "hash", models.RoleAdmin)
		require.NoError(t, err)
		user, err := r.CreateUser(t.Context(), "user@example.com", "hash", models.RoleUser)
		require.NoError(t, err)
		verified, err := r.CreateUser(t.Context(), "verified@example.com", "hash", models.RoleUser)
		require.NoError(t, err)
		verified, err = r.SetVerified(t.Context(), verified.ID)
		require.NoError(t, err)

		email := "user@example.com"
		role := models.RoleUser
		yes := true
		no := false
		missing := uuid.New()

		tests := []struct {
			name   string
			filter models.UserFilter
			want   []models.User
		}{
			{"no filter", models.UserFilter{}, []models.User{admin, user, verified}},
			{"by id", models.UserFilter{ID: &admin.ID}, []models.User{admin}},
			{"by email", models.UserFilter{Email: &email}, []models.User{user}},
			{"by role", models.UserFilter{Role: &role}, []models.User{user, verified}},
			{"verified", models.UserFilter{IsVerified: &yes}, []models.User{verified}},
			{"role and not verified", models.UserFilter{Role: &role, IsVerified: &no}, []models.User{user}},
			{"inactive", models.UserFilter{IsActive: &no}, nil},
			{"unknown id", models.UserFilter{ID: &missing}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := r.ListUsers(t.Context(), tt.filter)

				require.NoError(t, err)
				assert.ElementsMatch(t, tt.want, got)
			})
		}
	})
}
