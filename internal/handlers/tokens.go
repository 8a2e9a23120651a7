package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/authservice/internal/handlers/render"
	"github.com/nkiryanov/authservice/internal/handlers/userctx"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/models"
)

type refreshTokenResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newRefreshTokenResponse(t models.RefreshToken) refreshTokenResponse {
	return refreshTokenResponse{ID: t.ID, UserID: t.UserID, Token: t.Token, ExpiresAt: t.ExpiresAt}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func handleGetRefresh(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		token, err := s.GetRefresh(r.Context(), data.Email, data.Password)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSON(w, newRefreshTokenResponse(token))
	})
}

func handleCreateRefresh(s authService, l logger.Logger) http.Handler {
	type request struct {
		Email       string      `json:"email" validate:"required,email"`
		Password    string      `json:"password" validate:"required"`
		Role        models.Role `json:"role" validate:"omitempty,role"`
		AdminSecret string      `json:"admin_secret"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		if data.Role == "" {
			data.Role = models.RoleUser
		}

		token, err := s.CreateRefresh(r.Context(), data.Email, data.Password, data.Role, data.AdminSecret)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newRefreshTokenResponse(token), http.StatusCreated)
	})
}

func handleExchangeRefresh(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, _ := userctx.TokenFromContext(r.Context())

		token, err := s.ExchangeRefresh(r.Context(), bearer)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSON(w, newRefreshTokenResponse(token))
	})
}

func handleCreateAccess(s authService, l logger.Logger) http.Handler {
	type response struct {
		AccessToken string        `json:"access_token"`
		Claims      models.Claims `json:"claims"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, _ := userctx.TokenFromContext(r.Context())

		access, err := s.CreateAccess(r.Context(), bearer)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSONWithStatus(w, response{AccessToken: access.Token, Claims: access.Claims}, http.StatusCreated)
	})
}
