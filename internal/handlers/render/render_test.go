package render

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authservice/internal/models"
)

func TestRender_JSON(t *testing.T) {
	tests := []struct {
		name   string
		render func(w http.ResponseWriter)
		status int
		body   string
	}{
		{
			name:   "ok by default",
			render: func(w http.ResponseWriter) { JSON(w, map[string]string{"message": "sent"}) },
			status: http.StatusOK,
			body:   `{"message": "sent"}`,
		},
		{
			name:   "custom status",
			render: func(w http.ResponseWriter) { JSONWithStatus(w, map[string]string{"token": "abc"}, http.StatusCreated) },
			status: http.StatusCreated,
			body:   `{"token": "abc"}`,
		},
		{
			name:   "service error",
			render: func(w http.ResponseWriter) { ServiceError(w, "token not found", http.StatusNotFound) },
			status: http.StatusNotFound,
			body:   `{"error": "service_error", "message": "token not found"}`,
		},
		{
			name:   "empty list is array",
			render: func(w http.ResponseWriter) { JSON(w, []string{}) },
			status: http.StatusOK,
			body:   `[]`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			tc.render(w)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestRender_DecodeError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "not a json",
			body:     `email=john@example.com`,
			expected: "Failed to parse JSON: invalid character 'e' looking for beginning of value",
		},
		{
			name:     "wrong field type",
			body:     `{"email": "john@example.com", "role": 1}`,
			expected: "Invalid data type for field 'role'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var value struct {
				Email string      `json:"email"`
				Role  models.Role `json:"role"`
			}
			err := json.NewDecoder(strings.NewReader(tc.body)).Decode(&value)
			require.Error(t, err, "test expects invalid json")
			w := httptest.NewRecorder()

			DecodeError(w, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error": "decoding_failed", "message": "`+tc.expected+`"}`, w.Body.String())
		})
	}
}

func TestRender_Validate(t *testing.T) {
	type Request struct {
		ID       string      `json:"id" validate:"omitempty,uuid"`
		Email    string      `json:"email" validate:"required,email"`
		Password string      `json:"password" validate:"required,min=3,max=8"`
		Role     models.Role `json:"role" validate:"omitempty,role"`
		Hidden   string      `json:"-" validate:"omitempty,len=2"`
	}

	valid := Request{Email: "john@example.com", Password: "pwd"}

	t.Run("valid", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := Validate(w, valid)

		require.NoError(t, err)
		assert.Empty(t, w.Body.String(), "nothing rendered for valid value")
	})

	tests := []struct {
		name   string
		modify func(r *Request)
		fields string
	}{
		{
			name:   "required",
			modify: func(r *Request) { r.Email, r.Password = "", "" },
			fields: `{"email": "This field is required", "password": "This field is required"}`,
		},
		{
			name:   "email",
			modify: func(r *Request) { r.Email = "john" },
			fields: `{"email": "Invalid email address"}`,
		},
		{
			name:   "min",
			modify: func(r *Request) { r.Password = "p" },
			fields: `{"password": "Value is too short (minimum 3)"}`,
		},
		{
			name:   "max",
			modify: func(r *Request) { r.Password = "very-long-password" },
			fields: `{"password": "Value is too long (maximum 8)"}`,
		},
		{
			name:   "unknown role",
			modify: func(r *Request) { r.Role = "admin" },
			fields: `{"role": "Unknown role"}`,
		},
		{
			name:   "tag without message",
			modify: func(r *Request) { r.ID = "42" },
			fields: `{"id": "Invalid value"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.modify(&r)
			w := httptest.NewRecorder()

			err := Validate(w, r)

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": `+tc.fields+`
			}`, w.Body.String())
		})
	}

	t.Run("every known role passes", func(t *testing.T) {
		for _, role := range []models.Role{models.RoleAdmin, models.RoleUser, models.RoleStaffer, models.RoleOther} {
			r := valid
			r.Role = role

			require.NoError(t, Validate(httptest.NewRecorder(), r), "role %s must be valid", role)
		}
	})

	t.Run("not a struct", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := Validate(w, "just a string")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "service_error", "message": "Invalid request"}`, w.Body.String())
	})
}

func TestRender_BindAndValidate(t *testing.T) {
	type Credentials struct {
		Email    string      `json:"email" validate:"required,email"`
		Password string      `json:"password" validate:"required"`
		Role     models.Role `json:"role" validate:"required,role"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid request",
			requestBody:    `{"email": "john@example.com", "password": "pwd", "role": "STAFFER"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"error": "decoding_failed",
				"message": "Failed to parse JSON: invalid character 'i' looking for beginning of value"
			}`,
		},
		{
			name:           "validation failed",
			requestBody:    `{"email": "john", "role": "ROOT"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {
					"email": "Invalid email address",
					"password": "This field is required",
					"role": "Unknown role"
				}
			}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[Credentials](w, r)
				if err != nil {
					return // Error response already written
				}
				// Success case
				JSON(w, map[string]bool{"success": true})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, string(body))
		})
	}
}
