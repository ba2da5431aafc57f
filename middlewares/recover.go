package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/designcise/hawkbit/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger // Defaults to the app logger
	StackSize         int          // Max stack trace size (default: 4096)
	DisablePrintStack bool         // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// WithRecoverLogger sets the logger panics are reported to.
func WithRecoverLogger(l *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.Logger = l
	}
}

// Recover returns middleware that reports panics raised further down the
// chain. A panic is converted to a *PanicError; a *PanicError already
// produced by the runner passes through. Either way it is logged once,
// with the stack unless disabled, and returned for error translation.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return internal.MiddlewareFunc(func(r *http.Request, w *internal.Response, next internal.HandlerFunc) (res *internal.Response, err error) {
		defer func() {
			if v := recover(); v != nil {
				var stack []byte
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}
				res, err = nil, &PanicError{Value: v, Stack: stack}
			}
			if pe, ok := AsPanicError(err); ok {
				cfg.report(r, pe)
			}
		}()

		return next(r, w)
	})
}

func (cfg *RecoverConfig) report(r *http.Request, pe *PanicError) {
	log := cfg.Logger
	if log == nil {
		log = internal.LoggerFromContext(r.Context())
	}
	attrs := []any{slog.Any("panic", pe.Value)}
	if !cfg.DisablePrintStack && len(pe.Stack) > 0 {
		stack := pe.Stack
		if cfg.StackSize > 0 && len(stack) > cfg.StackSize {
			stack = stack[:cfg.StackSize]
		}
		attrs = append(attrs, slog.String("stack", string(stack)))
	}
	log.ErrorContext(r.Context(), "panic recovered", attrs...)
}
