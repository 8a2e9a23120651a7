package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/authservice/internal/handlers/render"
	"github.com/nkiryanov/authservice/internal/handlers/userctx"
	"github.com/nkiryanov/authservice/internal/logger"
	"github.com/nkiryanov/authservice/internal/models"
)

type userResponse struct {
	ID         uuid.UUID   `json:"id"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func handleRegister(s userService, l logger.Logger) http.Handler {
	type request struct {
		Email     string      `json:"email" validate:"required,email"`
		Password  string      `json:"password" validate:"required"`
		Role      models.Role `json:"role" validate:"omitempty,role"`
		AdminCode string      `json:"admin_code"`
	}
	type response struct {
		Record  userResponse `json:"record"`
		Message string       `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		if data.Role == "" {
			data.Role = models.RoleUser
		}

		user, message, err := s.Register(r.Context(), data.Email, data.Password, data.Role, data.AdminCode)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSONWithStatus(w, response{Record: newUserResponse(user), Message: message}, http.StatusCreated)
	})
}

func handleSendVerificationCode(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, _ := userctx.TokenFromContext(r.Context())

		message, err := s.SendVerificationCode(r.Context(), bearer)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: message})
	})
}

func handleVerify(s userService, l logger.Logger) http.Handler {
	type query struct {
		Code string `json:"verification_code" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := query{Code: r.URL.Query().Get("verification_code")}
		if err := render.Validate(w, q); err != nil {
			return
		}

		bearer, _ := userctx.TokenFromContext(r.Context())

		user, err := s.Verify(r.Context(), bearer, q.Code)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleResetPassword(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, _ := userctx.TokenFromContext(r.Context())

		message, err := s.ResetPassword(r.Context(), bearer)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: message})
	})
}

func handleMe(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, _ := userctx.TokenFromContext(r.Context())

		user, err := s.Me(r.Context(), bearer)
		if err != nil {
			writeError(w, l, err)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleListUsers(s userService, l logger.Logger) http.Handler {
	type query struct {
		ID         string `json:"id" validate:"omitempty,uuid"`
		Email      string `json:"email" validate:"omitempty,email"`
		Role       string `json:"role" validate:"omitempty,role"`
		IsVerified string `json:"is_verified" validate:"omitempty,boolean"`
		IsActive   string `json:"is_active" validate:"omitempty,boolean"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		q := query{
			ID:         values.Get("id"),
			Email:      values.Get("email"),
			Role:       values.Get("role"),
			IsVerified: values.Get("is_verified"),
			IsActive:   values.Get("is_active"),
		}
		if err := render.Validate(w, q); err != nil {
			return
		}

		var filter models.UserFilter
		if q.ID != "" {
			id, _ := uuid.Parse(q.ID)
			filter.ID = &id
		}
		if q.Email != "" {
			filter.Email = &q.Email
		}
		if q.Role != "" {
			role := models.Role(q.Role)
			filter.Role = &role
		}
		if q.IsVerified != "" {
			v, _ := strconv.ParseBool(q.IsVerified)
			filter.IsVerified = &v
		}
		if q.IsActive != "" {
			v, _ := strconv.ParseBool(q.IsActive)
			filter.IsActive = &v
		}

		bearer, _ := userctx.TokenFromContext(r.Context())

		users, err := s.List(r.Context(), bearer, filter)
		if err != nil {
			writeError(w, l, err)
			return
		}

		response := make([]userResponse, 0, len(users))
		for _, u := range users {
			response = append(response, newUserResponse(u))
		}
		render.JSON(w, response)
	})
}
