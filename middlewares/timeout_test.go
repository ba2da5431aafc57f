package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
	"github.com/designcise/hawkbit/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("passes through when handler completes in time", func(t *testing.T) {
		t.Parallel()

		res, err := run(middlewares.Timeout(time.Second), newRequest(http.MethodGet, "/"), func(r *http.Request, w *internal.Response) (*internal.Response, error) {
			_, hasDeadline := r.Context().Deadline()
			require.True(t, hasDeadline)
			_, err := w.WriteString("done")
			return w, err
		})
		require.NoError(t, err)
		require.Equal(t, "done", res.Body.String())
	})

	t.Run("returns TimeoutError when handler exceeds timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		_, err := run(middlewares.Timeout(10*time.Millisecond), newRequest(http.MethodGet, "/"), func(r *http.Request, w *internal.Response) (*internal.Response, error) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return w, nil
		})
		require.True(t, middlewares.IsTimeoutError(err))
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Equal(t, http.StatusGatewayTimeout, internal.StatusFromError(err))

		te, ok := middlewares.AsTimeoutError(err)
		require.True(t, ok)
		require.Equal(t, 10*time.Millisecond, te.Duration)
	})

	t.Run("cancelled parent is not a timeout", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		req := newRequest(http.MethodGet, "/").WithContext(ctx)

		_, err := run(middlewares.Timeout(time.Minute), req, func(r *http.Request, w *internal.Response) (*internal.Response, error) {
			cancel()
			<-r.Context().Done()
			return nil, r.Context().Err()
		})
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, middlewares.IsTimeoutError(err))
	})

	t.Run("uses default timeout when zero provided", func(t *testing.T) {
		t.Parallel()

		_, err := run(middlewares.Timeout(0), newRequest(http.MethodGet, "/"), func(r *http.Request, w *internal.Response) (*internal.Response, error) {
			deadline, _ := r.Context().Deadline()
			require.WithinDuration(t, time.Now().Add(middlewares.DefaultTimeout), deadline, time.Second)
			return w, nil
		})
		require.NoError(t, err)
	})

	t.Run("writes after the deadline never reach the in-flight response", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		finished := make(chan struct{})
		var lateHeader, lateBody string

		app := internal.New(
			internal.WithMiddleware(middlewares.Timeout(5*time.Millisecond)),
			internal.WithListener(internal.PhaseLifecycleError, func(e *internal.Event) error {
				close(started)
				lateHeader = e.Response.Header().Get("X-Late")
				lateBody = e.Response.Body.String()
				return nil
			}),
			internal.WithHandlers(internal.RoutesFunc(func(r internal.Router) {
				r.GET("/", func(r *http.Request, w *internal.Response) (*internal.Response, error) {
					defer close(finished)
					select {
					case <-started:
					case <-time.After(time.Second):
					}
					w.Header().Set("X-Late", "1")
					w.WriteHeader(http.StatusOK)
					_, _ = w.WriteString("late")
					if l, ok := internal.LifecycleFromContext(r.Context()); ok {
						_, _ = l.Output().Write([]byte("late output"))
					}
					return w, nil
				})
			})),
		)

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, newRequest(http.MethodGet, "/"))
		<-finished

		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
		require.Empty(t, rec.Header().Get("X-Late"))
		require.NotContains(t, rec.Body.String(), "late")
		require.Empty(t, lateHeader)
		require.NotContains(t, lateBody, "late")
	})

	t.Run("timeout is translated to 504 by the app", func(t *testing.T) {
		t.Parallel()

		app := internal.New(
			internal.WithMiddleware(middlewares.Timeout(5*time.Millisecond)),
			internal.WithHandlers(internal.RoutesFunc(func(r internal.Router) {
				r.GET("/", func(r *http.Request, w *internal.Response) (*internal.Response, error) {
					<-r.Context().Done()
					return w, nil
				})
			})),
		)

		res, err := app.Handle(newRequest(http.MethodGet, "/"))
		require.NoError(t, err)
		require.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
	})
}
