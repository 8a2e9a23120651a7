package main

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/authservice/internal/testutil"
)

func Test_run(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)
	r := testutil.StartRedis(t)

	noEnv := func(string) string { return "" }
	getwd := func() (string, error) { return t.TempDir(), nil }

	port, err := testutil.RandomPort()
	require.NoError(t, err, "failed to get random port to start server")
	listenAddr := fmt.Sprintf("localhost:%d", port)

	args := []string{
		"--address", listenAddr,
		"--log-level", "debug",
		"--database", pg.DSN,
		"--redis", r.URL,
		"--secret-key", "secret",
		"--admin-secret", "admin",
	}

	t.Run("serve until context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)

		go func() {
			done <- run(ctx, noEnv, getwd, args)
		}()

		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + listenAddr + "/healthz")
			if err != nil {
				return false
			}
			defer resp.Body.Close() // nolint:errcheck
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond, "server must become healthy")

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err, "on correct stop should not return error")
		case <-time.After(5 * time.Second):
			t.Fatal("server not stopped after context cancelled")
		}
	})

	t.Run("fail without admin secret", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
		t.Cleanup(cancel)

		err := run(ctx, noEnv, getwd, args[:len(args)-2])

		require.Error(t, err)
		require.Contains(t, err.Error(), "admin secret is required")
	})

	t.Run("fail with unsupported algorithm", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
		t.Cleanup(cancel)

		err := run(ctx, noEnv, getwd, append(args, "--algorithm", "RS256"))

		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported signing algorithm")
	})
}
