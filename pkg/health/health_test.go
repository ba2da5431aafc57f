package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
	"github.com/designcise/hawkbit/pkg/health"
)

func ok(context.Context) error { return nil }

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()

		rep := health.Run(context.Background(), nil)
		require.True(t, rep.Healthy())
		require.Empty(t, rep.Checks)
	})

	t.Run("mixed", func(t *testing.T) {
		t.Parallel()

		rep := health.Run(context.Background(), health.Checks{
			"db":    ok,
			"cache": func(context.Context) error { return errors.New("connection refused") },
		})
		require.False(t, rep.Healthy())
		require.Equal(t, health.StatusHealthy, rep.Checks["db"].Status)
		require.Equal(t, health.Check{Status: health.StatusUnhealthy, Error: "connection refused"}, rep.Checks["cache"])
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		block := make(chan struct{})
		defer close(block)

		rep := health.Run(context.Background(), health.Checks{
			"stuck": func(context.Context) error {
				<-block
				return nil
			},
		}, health.WithTimeout(20*time.Millisecond))
		require.False(t, rep.Healthy())
		require.Equal(t, health.ErrCheckTimeout.Error(), rep.Checks["stuck"].Error)
	})

	t.Run("panicking check", func(t *testing.T) {
		t.Parallel()

		rep := health.Run(context.Background(), health.Checks{
			"bad": func(context.Context) error { panic("nil pool") },
		})
		require.False(t, rep.Healthy())
		require.Contains(t, rep.Checks["bad"].Error, "nil pool")
	})
}

func TestProbes(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(
		health.New(health.Checks{"ok": ok}),
		health.New(health.Checks{
			"broker": func(context.Context) error { return errors.New("broker down") },
		}, health.WithPrefix("/status")),
	))

	tests := []struct {
		name   string
		target string
		accept string
		status int
		body   string
	}{
		{name: "live", target: "/health/live", status: http.StatusOK, body: "OK"},
		{name: "ready", target: "/health/ready", status: http.StatusOK, body: "OK"},
		{name: "ready json", target: "/health/ready?format=json", status: http.StatusOK, body: `{"checks":{"ok":{"status":"healthy"}},"status":"healthy"}`},
		{name: "unready", target: "/status/ready", status: http.StatusServiceUnavailable, body: "Service Unavailable"},
		{name: "unready json", target: "/status/ready", accept: "application/json", status: http.StatusServiceUnavailable, body: `{"checks":{"broker":{"status":"unhealthy","error":"broker down"}},"status":"unhealthy"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			res, err := app.Handle(req)
			require.NoError(t, err)
			require.Equal(t, tt.status, res.StatusCode)
			require.Equal(t, tt.body, res.Body.String())
			require.Equal(t, "no-store", res.Header().Get("Cache-Control"))
		})
	}
}
