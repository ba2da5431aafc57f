package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("handler failed: %w", internal.NewHTTPError(http.StatusBadRequest, "bad request"))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(errors.New("something went wrong")))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	httpErr := &internal.HTTPError{Code: http.StatusServiceUnavailable, Message: "try later", Err: cause}

	got := internal.AsHTTPError(fmt.Errorf("outer: %w", httpErr))
	require.NotNil(t, got)
	require.Equal(t, http.StatusServiceUnavailable, got.StatusCode())
	require.Equal(t, "try later", got.Error())
	require.ErrorIs(t, httpErr, cause)

	require.Nil(t, internal.AsHTTPError(errors.New("plain")))
}

func TestStatusFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"route not found", &internal.RouteNotFoundError{Method: "GET", Path: "/"}, http.StatusNotFound},
		{"wrapped route not found", fmt.Errorf("dispatch: %w", &internal.RouteNotFoundError{}), http.StatusNotFound},
		{"method not allowed", &internal.MethodNotAllowedError{Method: "POST", Path: "/"}, http.StatusMethodNotAllowed},
		{"http error", internal.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"status outside error range", internal.NewHTTPError(http.StatusFound, "moved"), http.StatusInternalServerError},
		{"generic", errors.New("boom"), http.StatusInternalServerError},
		{"panic", &internal.PanicError{Value: "x"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, internal.StatusFromError(tt.err))
		})
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	require.True(t, internal.IsRouteNotFound(&internal.RouteNotFoundError{}))
	require.False(t, internal.IsRouteNotFound(&internal.MethodNotAllowedError{}))

	cause := errors.New("template missing")
	fault := &internal.RenderFaultError{Err: cause, Mode: internal.RenderHTML}
	require.True(t, internal.IsRenderFault(fault))
	require.ErrorIs(t, fault, cause)
	require.False(t, internal.IsFatal(fault))

	require.True(t, internal.IsFatal(&internal.InvalidMiddlewareError{Index: 2}))
	require.True(t, internal.IsFatal(fmt.Errorf("wrap: %w", &internal.ContractViolationError{Subject: "response", Want: "set"})))
	require.EqualError(t, &internal.ContractViolationError{Subject: "response", Want: "set"}, "response needs to be set")
	require.False(t, internal.IsFatal(errors.New("boom")))
}

func TestPanicError(t *testing.T) {
	t.Parallel()

	cause := errors.New("inner")
	pe := &internal.PanicError{Value: cause}
	require.ErrorIs(t, pe, cause)
	require.True(t, internal.IsPanicError(fmt.Errorf("wrap: %w", pe)))

	got, ok := internal.AsPanicError(pe)
	require.True(t, ok)
	require.Same(t, pe, got)

	_, ok = internal.AsPanicError(errors.New("plain"))
	require.False(t, ok)
	require.Contains(t, (&internal.PanicError{Value: 42}).Error(), "42")
}
