package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authservice/internal/handlers/userctx"
)

func TestBearerToken(t *testing.T) {
	// Handler writes token found in context to response
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := userctx.TokenFromContext(r.Context())
		require.True(t, ok, "middleware must set token or write error")

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(token))
		require.NoError(t, err)
	})

	srv := httptest.NewServer(BearerToken(handler))
	defer srv.Close()

	do := func(t *testing.T, header string) (int, string) {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp.StatusCode, string(body)
	}

	t.Run("token ok", func(t *testing.T) {
		status, body := do(t, "Bearer some.jwt.token")

		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "some.jwt.token", body)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		status, body := do(t, "bearer some.jwt.token")

		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "some.jwt.token", body)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer    "},
		{"scheme only", "Bearer"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, tc.header)

			require.Equal(t, http.StatusForbidden, status)
			require.JSONEq(t, `{"error": "service_error", "message": "Not authenticated"}`, body)
		})
	}
}
