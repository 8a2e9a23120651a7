package middleware

import (
	"net/http"
	"strings"

	"github.com/nkiryanov/authservice/internal/handlers/render"
	"github.com/nkiryanov/authservice/internal/handlers/userctx"
)

const bearerPrefix = "Bearer "

// BearerToken extracts token from 'Authorization: Bearer <token>' header and puts it to request context
// The token is not checked here: every operation classifies it by itself
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			render.ServiceError(w, "Not authenticated", http.StatusForbidden)
			return
		}

		token := strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" {
			render.ServiceError(w, "Not authenticated", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.NewToken(r.Context(), token)))
	})
}
