package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/nkiryanov/authservice/internal/handlers/render"
	"github.com/nkiryanov/authservice/internal/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency (database, cache) is reachable
type HealthCheck func(ctx context.Context) error

func handleHealth(checks map[string]HealthCheck, l logger.Logger) http.Handler {
	type response struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := response{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK

		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				l.Warn("health check failed", "check", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		render.JSONWithStatus(w, resp, status)
	})
}
