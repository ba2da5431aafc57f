package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/designcise/hawkbit/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// Timeout returns middleware that bounds the rest of the chain by a deadline.
// The request passed down carries the deadline. When it expires first, a
// *TimeoutError (status 504) is returned and translated like any other error.
//
// The rest of the chain writes into a copy of the in-flight response. The
// copy is adopted only when the chain finishes in time; writes made after
// the deadline are dropped. Watch r.Context().Done() in long-running work
// to stop early.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := &TimeoutConfig{
		Timeout: timeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	type result struct {
		res *internal.Response
		err error
	}

	return internal.MiddlewareFunc(func(r *http.Request, w *internal.Response, next internal.HandlerFunc) (*internal.Response, error) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
		defer cancel()

		scratch := w.Clone()
		done := make(chan result, 1)
		go func() {
			res, err := next(r.WithContext(ctx), scratch)
			done <- result{res: res, err: err}
		}()

		select {
		case out := <-done:
			if out.res == scratch {
				*w = *scratch
				return w, out.err
			}
			return out.res, out.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				internal.LoggerFromContext(r.Context()).WarnContext(r.Context(), "request timeout",
					slog.String("timeout", cfg.Timeout.String()),
				)
				return nil, &TimeoutError{Duration: cfg.Timeout}
			}
			return nil, ctx.Err()
		}
	})
}
