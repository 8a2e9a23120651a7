package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/authservice/internal/handlers/middleware"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	checks map[string]HealthCheck,
	logger logger.Logger,
) http.Handler {
	withToken := middleware.BearerToken

	tokens := http.NewServeMux()
	tokens.Handle("POST /refresh/get", handleGetRefresh(authService, logger))
	tokens.Handle("POST /refresh/create", handleCreateRefresh(authService, logger))
	tokens.Handle("POST /refresh/exchange", withToken(handleExchangeRefresh(authService, logger)))
	tokens.Handle("POST /access/create", withToken(handleCreateAccess(authService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/tokens/", http.StripPrefix("/api/tokens", tokens))

	root.Handle("POST /api/users", handleRegister(userService, logger))
	root.Handle("GET /api/users", withToken(handleListUsers(userService, logger)))
	root.Handle("GET /api/users/verification/get-code", withToken(handleSendVerificationCode(userService, logger)))
	root.Handle("PATCH /api/users/verification/set-code", withToken(handleVerify(userService, logger)))
	root.Handle("PATCH /api/users/reset-password", withToken(handleResetPassword(userService, logger)))
	root.Handle("GET /api/users/me", withToken(handleMe(userService, logger)))

	root.Handle("GET /healthz", handleHealth(checks, logger))

	handler := chain(root,
		middleware.AccessLog(logger),
	)

	return handler
}

type authService interface {
	// Return stored refresh token of user authenticated by email and password
	// Has to return apperrors.ErrAuthenticationFailed on bad credentials
	GetRefresh(ctx context.Context, email string, password string) (models.RefreshToken, error)

	// Issue the first refresh token of user
	// Has to return apperrors.ErrTokenAlreadyExists if user has one already
	CreateRefresh(ctx context.Context, email string, password string, role models.Role, adminSecret string) (models.RefreshToken, error)

	// Replace presented refresh token (expired or not) with a new one
	ExchangeRefresh(ctx context.Context, token string) (models.RefreshToken, error)

	// Issue access token by fresh refresh token
	CreateAccess(ctx context.Context, token string) (models.AccessToken, error)
}

type userService interface {
	Register(ctx context.Context, email string, password string, role models.Role, adminCode string) (models.User, string, error)
	SendVerificationCode(ctx context.Context, token string) (string, error)
	Verify(ctx context.Context, token string, code string) (models.User, error)
	ResetPassword(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, token string) (models.User, error)
	List(ctx context.Context, token string, filter models.UserFilter) ([]models.User, error)
}
