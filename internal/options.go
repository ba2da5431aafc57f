package internal

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/designcise/hawkbit/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided: the first one runs first
// and wraps everything after it.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds net/http style middleware, such as the ones from
// chi/middleware, to the global chain.
//
// Example:
//
//	hawkbit.New(
//	    hawkbit.WithHTTPMiddleware(middleware.RealIP, middleware.NoCache),
//	)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		for _, m := range mw {
			a.middlewares = append(a.middlewares, FromHTTP(m))
		}
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRouter replaces the default chi-backed router. Handlers registered
// with WithHandlers need a router that also implements Router.
func WithRouter(d Dispatcher) Option {
	return func(a *App) {
		if d != nil {
			a.router = d
		}
	}
}

// WithConfig sets the configuration on top of the defaults. The config is
// copied, later changes to cfg are not observed by the app.
func WithConfig(cfg *Config) Option {
	return func(a *App) {
		if cfg != nil {
			a.config = DefaultConfig()
			a.config.Merge(cfg.All())
		}
	}
}

// WithConfigValues merges values into the configuration.
//
// Example:
//
//	hawkbit.New(
//	    hawkbit.WithConfigValues(map[string]any{
//	        "error":       true,
//	        "error.catch": false,
//	    }),
//	)
func WithConfigValues(values map[string]any) Option {
	return func(a *App) {
		a.config.Merge(values)
	}
}

// WithShowErrors is a shortcut for the "error" configuration key.
// Shown errors render in full detail; hidden errors render as plain text.
func WithShowErrors(show bool) Option {
	return func(a *App) {
		a.config.Set(ConfigError, show)
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, lifecycle_id).
// Level, format and Sentry settings come from the log.* and sentry.* config
// keys, whichever option set them.
//
// Example:
//
//	hawkbit.New(
//	    hawkbit.WithLogger("api", hawkbit.LifecycleIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.loggerSpec = &loggerSpec{component: component, extractors: extractors}
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
			a.loggerSpec = nil
		}
	}
}

// WithEventSink replaces the default synchronous emitter.
func WithEventSink(sink EventSink) Option {
	return func(a *App) {
		if sink != nil {
			a.events = sink
		}
	}
}

// WithListener subscribes l to the named phase. Use PhaseAny to receive
// every phase.
//
// Example:
//
//	hawkbit.New(
//	    hawkbit.WithListener(hawkbit.PhaseLifecycleError, func(e *hawkbit.Event) error {
//	        _, err := e.ErrorResponse.WriteString("custom error page")
//	        return err
//	    }),
//	)
func WithListener(phase string, l Listener) Option {
	return func(a *App) {
		if l != nil {
			a.listeners = append(a.listeners, listenerEntry{name: phase, listener: l})
		}
	}
}

// WithRenderer replaces the default error renderer.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		if r != nil {
			a.renderer = r
		}
	}
}

// WithResponseEmitter sets the emitter used by App.Run to transmit
// responses. ServeHTTP always emits to its http.ResponseWriter.
func WithResponseEmitter(e ResponseEmitter) Option {
	return func(a *App) {
		if e != nil {
			a.emitter = e
		}
	}
}

// WithCLI marks the app as running from the command line. Responses and
// error pages are then plain text and the default emitter writes to stdout.
func WithCLI(cli bool) Option {
	return func(a *App) {
		a.cli = cli
	}
}

// WithTerminate controls whether Run emits lifecycle.complete.
// Enabled by default.
func WithTerminate(enabled bool) Option {
	return func(a *App) {
		a.terminate = enabled
	}
}

// WithForceResponseEmitting writes the response body to the fallback
// output when the response emitter fails.
func WithForceResponseEmitting(force bool) Option {
	return func(a *App) {
		a.forceEmit = force
	}
}

// WithOutput sets the fallback output used by forced response emitting.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		if w != nil {
			a.fallback = w
		}
	}
}
