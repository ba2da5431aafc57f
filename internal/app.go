package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/designcise/hawkbit/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App holds the collaborators shared by every request: router, middleware
// chain, event sink, renderer, configuration, logger and response emitter.
// App is immutable after creation - all configuration is done via New().
// Per-request state lives in a Lifecycle.
type App struct {
	router      Dispatcher
	runner      *Runner
	events      EventSink
	renderer    Renderer
	config      *Config
	logger      *slog.Logger
	emitter     ResponseEmitter
	fallback    io.Writer
	handlers    []Handler
	middlewares []Middleware
	listeners   []listenerEntry
	loggerSpec  *loggerSpec
	cli         bool
	terminate   bool
	forceEmit   bool
}

type listenerEntry struct {
	listener Listener
	name     string
}

type loggerSpec struct {
	component  string
	extractors []logger.ContextExtractor
}

func (s *loggerSpec) build(cfg *Config) *slog.Logger {
	opts, err := cfg.LoggerOptions()
	log := logger.NewWithOptions(opts, s.extractors...).With("component", s.component)
	if err != nil {
		log.Warn("invalid log level, using info", slog.Any("error", err))
	}
	return log
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := hawkbit.New(
//	    hawkbit.WithMiddleware(middlewares.RequestID()),
//	    hawkbit.WithHandlers(handlers.NewPages()),
//	    hawkbit.WithShowErrors(true),
//	)
func New(opts ...Option) *App {
	a := &App{
		logger:    logger.NewNope(), // Default: noop logger (before options)
		config:    DefaultConfig(),
		terminate: true,
		fallback:  os.Stdout,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.loggerSpec != nil {
		a.logger = a.loggerSpec.build(a.config)
	}
	if a.events == nil {
		a.events = NewEmitter()
	}
	for _, e := range a.listeners {
		a.events.AddListener(e.name, e.listener)
	}
	if a.renderer == nil {
		a.renderer = NewRenderer(WithRendererDetail(a.showErrors()))
	}
	if a.emitter == nil {
		if a.cli {
			a.emitter = NewStreamEmitter(os.Stdout)
		} else {
			a.emitter = NewStreamEmitter(io.Discard)
		}
	}

	a.setupRoutes()
	a.runner = NewRunner(a.middlewares...)
	return a
}

// setupRoutes lets every registered handler declare its routes.
func (a *App) setupRoutes() {
	if a.router == nil {
		a.router = NewMux()
	}
	if len(a.handlers) == 0 {
		return
	}
	r, ok := a.router.(Router)
	if !ok {
		panic("hawkbit: WithHandlers requires a router that implements Router")
	}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// Config returns the app configuration.
func (a *App) Config() *Config {
	return a.config
}

// Events returns the event sink listeners are registered on.
func (a *App) Events() EventSink {
	return a.events
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) showErrors() bool {
	return a.config.Bool(ConfigError, false)
}

// Handle runs a request through a fresh lifecycle and returns the response
// without emitting it.
func (a *App) Handle(r *http.Request) (*Response, error) {
	return a.NewLifecycle().Handle(r, nil, CatchDefault)
}

// Run runs a complete pass for r: handling, emitting through the app's
// response emitter, termination and shutdown.
func (a *App) Run(r *http.Request) error {
	return a.NewLifecycle().Run(r, nil)
}

// ServeHTTP runs one lifecycle per request and emits the response to w.
// Errors that escape the lifecycle are logged, published as
// system.exception and answered with 500 when nothing was written yet.
// system.shutdown is always the last phase of the pass.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)
	l := a.NewLifecycle()
	l.emitter = NewWriterEmitter(rw)
	l.held = true

	var res *Response
	defer func() { _ = l.Shutdown(res) }()
	defer func() {
		if v := recover(); v != nil {
			a.fail(rw, r, l, &PanicError{Value: v, Stack: debug.Stack()})
		}
	}()

	res, err := l.pass(r, nil)
	if err != nil {
		a.fail(rw, r, l, err)
	}
}

func (a *App) fail(w *ResponseWriter, r *http.Request, l *Lifecycle, err error) {
	a.logger.ErrorContext(r.Context(), "unhandled lifecycle error",
		slog.String("lifecycle_id", l.ID()),
		slog.String("error_type", ErrorType(err)),
		slog.Any("error", err),
	)

	l.event.Err = err
	if lerr := l.emit(PhaseSystemException); lerr != nil {
		l.logError("system.exception listener failed", lerr)
	}

	if !w.Written() {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// AsMiddleware embeds the app in another app's middleware chain. The
// request is handled by a fresh lifecycle of this app; when none of its
// routes match, the request continues down the outer chain. A router that
// implements RouteMatcher is asked first, so unmatched requests never
// start an inner pass. Every inner pass is shut down before the outer
// chain continues; the response it produced stays open for the outer app.
func (a *App) AsMiddleware() Middleware {
	return MiddlewareFunc(func(r *http.Request, w *Response, next HandlerFunc) (*Response, error) {
		if m, ok := a.router.(RouteMatcher); ok && !m.Match(r) {
			return next(r, w)
		}

		l := a.NewLifecycle()
		l.held = true
		res, err := l.Handle(r, nil, CatchDefault)
		if err != nil {
			_ = l.release(nil, false)
			return nil, err
		}
		if IsRouteNotFound(l.stack.Last()) {
			_ = l.release(nil, false)
			return next(r, w)
		}
		_ = l.release(res, false)
		return res, nil
	})
}

// Serve starts an HTTP server for the app and blocks until shutdown.
//
// Example:
//
//	app := hawkbit.New(
//	    hawkbit.WithHandlers(handlers.NewPages()),
//	)
//	err := app.Serve(":8080", hawkbit.Logger(slog))
func (a *App) Serve(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if addr == "" {
		addr = a.config.String(ConfigServerAddress, cfg.address)
	}
	cfg.address = addr
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	return runServer(a, cfg)
}

// Context helpers used by handlers.

// Output returns the diagnostic output buffer of the lifecycle bound to
// ctx, or io.Discard outside a lifecycle.
func Output(ctx context.Context) io.Writer {
	if l, ok := LifecycleFromContext(ctx); ok {
		return l.Output()
	}
	return io.Discard
}
