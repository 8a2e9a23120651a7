package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/authservice/internal/apperrors"
	"github.com/nkiryanov/authservice/internal/handlers/render"
	"github.com/nkiryanov/authservice/internal/logger"
)

// Order matters: more specific errors go first
var errorStatuses = []struct {
	err    error
	status int
}{
	{apperrors.ErrTokenExpired, http.StatusForbidden},
	{apperrors.ErrTokenInvalidSignature, http.StatusForbidden},
	{apperrors.ErrTokenMalformed, http.StatusForbidden},
	{apperrors.ErrTokenWrongType, http.StatusForbidden},
	{apperrors.ErrInvalidToken, http.StatusForbidden},
	{apperrors.ErrInsufficientRole, http.StatusForbidden},
	{apperrors.ErrInvalidAdminSecret, http.StatusForbidden},
	{apperrors.ErrUserNotEligible, http.StatusForbidden},
	{apperrors.ErrVerificationCodeInvalid, http.StatusForbidden},
	{apperrors.ErrTokenAlreadyExists, http.StatusBadRequest},
	{apperrors.ErrTokenNotFound, http.StatusNotFound},
	{apperrors.ErrAuthenticationFailed, http.StatusNotFound},
	{apperrors.ErrUserNotFound, http.StatusNotFound},
	{apperrors.ErrUserAlreadyExists, http.StatusConflict},
}

// errorStatus returns http status for service error and message safe to show to client
func errorStatus(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status, es.err.Error()
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// writeError renders service error. Unexpected errors are logged and hidden from client
func writeError(w http.ResponseWriter, l logger.Logger, err error) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		l.Error("request failed", "error", err)
	}
	render.ServiceError(w, message, status)
}
