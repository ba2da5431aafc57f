package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/middlewares"
)

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	t.Run("formats timeout duration", func(t *testing.T) {
		t.Parallel()

		err := &middlewares.TimeoutError{Duration: 1500 * time.Millisecond}
		require.Equal(t, "request timeout after 1.5s", err.Error())
		require.Equal(t, http.StatusGatewayTimeout, err.StatusCode())
	})

	t.Run("helpers", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("handler: %w", &middlewares.TimeoutError{Duration: time.Second})
		require.True(t, middlewares.IsTimeoutError(wrapped))
		require.False(t, middlewares.IsTimeoutError(errors.New("other")))
		require.False(t, middlewares.IsTimeoutError(nil))

		te, ok := middlewares.AsTimeoutError(wrapped)
		require.True(t, ok)
		require.Equal(t, time.Second, te.Duration)

		_, ok = middlewares.AsTimeoutError(nil)
		require.False(t, ok)
	})
}

func TestPanicErrorHelpers(t *testing.T) {
	t.Parallel()

	pe := &middlewares.PanicError{Value: "boom"}
	require.Equal(t, "panic: boom", pe.Error())
	require.True(t, middlewares.IsPanicError(fmt.Errorf("wrap: %w", pe)))
	require.False(t, middlewares.IsPanicError(nil))

	got, ok := middlewares.AsPanicError(pe)
	require.True(t, ok)
	require.Same(t, pe, got)
}
