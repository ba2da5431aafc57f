package hawkbit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/designcise/hawkbit/internal"
	"github.com/designcise/hawkbit/pkg/logger"
)

// Type aliases - public API
type (
	// App holds the collaborators shared by every request: router,
	// middleware, event sink, renderer, configuration and logger.
	App = internal.App

	// Lifecycle is one request-handling pass.
	Lifecycle = internal.Lifecycle

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Dispatcher resolves a request to a handler and invokes it.
	Dispatcher = internal.Dispatcher

	// RouteMatcher reports whether a request has a route without
	// dispatching it. AsMiddleware uses it to skip unmatched requests.
	RouteMatcher = internal.RouteMatcher

	// Mux is the default chi-backed router.
	Mux = internal.Mux

	// Handler declares routes on a router.
	Handler = internal.Handler

	// RoutesFunc adapts a function to the Handler interface.
	RoutesFunc = internal.RoutesFunc

	// HandlerFunc is the signature for route handlers and the next callable.
	HandlerFunc = internal.HandlerFunc

	// Middleware is one link of the chain.
	Middleware = internal.Middleware

	// MiddlewareFunc adapts a function to the Middleware interface.
	MiddlewareFunc = internal.MiddlewareFunc

	// ErrorFunc handles an error raised inside the chain.
	ErrorFunc = internal.ErrorFunc

	// Runner composes middleware around a final handler.
	Runner = internal.Runner

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Catch selects whether HandleError translates or propagates.
	Catch = internal.Catch

	// Response is the in-memory response built during a pass.
	Response = internal.Response

	// Stream is a response body.
	Stream = internal.Stream

	// ResponseWriter tracks what was written to an http.ResponseWriter.
	ResponseWriter = internal.ResponseWriter

	// ResponseEmitter transmits a finished response.
	ResponseEmitter = internal.ResponseEmitter

	// WriterEmitter emits a response to an http.ResponseWriter.
	WriterEmitter = internal.WriterEmitter

	// StreamEmitter emits only the response body to an io.Writer.
	StreamEmitter = internal.StreamEmitter

	// Event is the mutable record handed to listeners.
	Event = internal.Event

	// Listener receives lifecycle events.
	Listener = internal.Listener

	// EventSink publishes lifecycle events to listeners.
	EventSink = internal.EventSink

	// Emitter is the default synchronous EventSink.
	Emitter = internal.Emitter

	// Renderer formats an error for the error response body.
	Renderer = internal.Renderer

	// RendererFunc adapts a function to the Renderer interface.
	RendererFunc = internal.RendererFunc

	// ErrorRenderer is the default Renderer.
	ErrorRenderer = internal.ErrorRenderer

	// RendererOption configures the default renderer.
	RendererOption = internal.RendererOption

	// RenderMode selects the output format of the renderer.
	RenderMode = internal.RenderMode

	// Negotiation holds the inputs of render mode selection.
	Negotiation = internal.Negotiation

	// ErrorProducer is a deferred error value evaluated by HandleError.
	ErrorProducer = internal.ErrorProducer

	// ExceptionStack records the errors of a pass.
	ExceptionStack = internal.ExceptionStack

	// Config is a key/value store with dot-path lookup.
	Config = internal.Config

	// Extractor tries sources in order and returns the first match.
	Extractor = internal.Extractor

	// ExtractorSource extracts a value from a request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// StatusCoder is implemented by errors that declare their HTTP status.
	StatusCoder = internal.StatusCoder

	// HTTPError is an error carrying an HTTP status code.
	HTTPError = internal.HTTPError

	// RouteNotFoundError is returned when no route matches (404).
	RouteNotFoundError = internal.RouteNotFoundError

	// MethodNotAllowedError is returned when only the method mismatches (405).
	MethodNotAllowedError = internal.MethodNotAllowedError

	// PanicError represents a recovered panic.
	PanicError = internal.PanicError

	// RenderFaultError wraps a failure of the renderer.
	RenderFaultError = internal.RenderFaultError

	// InvalidMiddlewareError reports a chain entry that cannot be invoked.
	InvalidMiddlewareError = internal.InvalidMiddlewareError

	// ContractViolationError reports a collaborator breaking its contract.
	ContractViolationError = internal.ContractViolationError
)

// Lifecycle phases.
const (
	PhaseRequestReceived   = internal.PhaseRequestReceived
	PhaseResponseCreated   = internal.PhaseResponseCreated
	PhaseResponseSent      = internal.PhaseResponseSent
	PhaseLifecycleError    = internal.PhaseLifecycleError
	PhaseRuntimeError      = internal.PhaseRuntimeError
	PhaseLifecycleComplete = internal.PhaseLifecycleComplete
	PhaseShutdown          = internal.PhaseShutdown
	PhaseSystemException   = internal.PhaseSystemException
	PhaseHandleError       = internal.PhaseHandleError
	PhaseAny               = internal.PhaseAny
)

// Catch decisions.
const (
	CatchDefault = internal.CatchDefault
	CatchOn      = internal.CatchOn
	CatchOff     = internal.CatchOff
)

// Render modes.
const (
	RenderPlain = internal.RenderPlain
	RenderJSON  = internal.RenderJSON
	RenderXML   = internal.RenderXML
	RenderHTML  = internal.RenderHTML
)

// Content types.
const (
	ContentTypeText = internal.ContentTypeText
	ContentTypeJSON = internal.ContentTypeJSON
	ContentTypeHTML = internal.ContentTypeHTML
)

// Configuration keys.
const (
	ConfigError             = internal.ConfigError
	ConfigErrorCatch        = internal.ConfigErrorCatch
	ConfigLogLevel          = internal.ConfigLogLevel
	ConfigLogFormat         = internal.ConfigLogFormat
	ConfigSentryDSN         = internal.ConfigSentryDSN
	ConfigSentryEnvironment = internal.ConfigSentryEnvironment
	ConfigServerAddress     = internal.ConfigServerAddress
)

// Environment overrides read by LoadConfig.
const (
	EnvConfigPath = internal.EnvConfigPath
	EnvError      = internal.EnvError
	EnvErrorCatch = internal.EnvErrorCatch
	EnvLogLevel   = internal.EnvLogLevel
	EnvSentryDSN  = internal.EnvSentryDSN
)

// Sentinel errors.
var (
	ErrStreamNotWritable = internal.ErrStreamNotWritable
	ErrStreamClosed      = internal.ErrStreamClosed
	ErrEventName         = internal.ErrEventName
	ErrNoRequest         = internal.ErrNoRequest
	ErrAlreadyEmitted    = internal.ErrAlreadyEmitted
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := hawkbit.New(
//	    hawkbit.WithMiddleware(middlewares.RequestID()),
//	    hawkbit.WithHandlers(handlers.NewPages()),
//	)
//
//	err := app.Serve(":8080", hawkbit.ShutdownTimeout(10*time.Second))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewRunner creates a middleware runner over mw.
func NewRunner(mw ...Middleware) *Runner {
	return internal.NewRunner(mw...)
}

// NewMux creates an empty chi-backed router.
func NewMux() *Mux {
	return internal.NewMux()
}

// NewResponse creates an empty 200 response with the given content type.
func NewResponse(contentType string) *Response {
	return internal.NewResponse(contentType)
}

// NewStream creates a writable body holding content.
func NewStream(content string) *Stream {
	return internal.NewStream(content)
}

// NewReadOnlyStream creates a body that rejects writes.
func NewReadOnlyStream(content string) *Stream {
	return internal.NewReadOnlyStream(content)
}

// NewEmitter creates the default synchronous event sink.
func NewEmitter() *Emitter {
	return internal.NewEmitter()
}

// NewEvent creates an event owned by l, which may be nil.
func NewEvent(name string, l *Lifecycle) *Event {
	return internal.NewEvent(name, l)
}

// NewRenderer creates the default error renderer.
func NewRenderer(opts ...RendererOption) *ErrorRenderer {
	return internal.NewRenderer(opts...)
}

// NewConfig creates a config holding a copy of values.
func NewConfig(values map[string]any) *Config {
	return internal.NewConfig(values)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return internal.DefaultConfig()
}

// LoadConfig layers defaults, a YAML file and HAWKBIT_* environment overrides.
// An empty path falls back to $HAWKBIT_CONFIG, then ./hawkbit.yaml.
func LoadConfig(path string) (*Config, error) {
	return internal.LoadConfig(path)
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// NewWriterEmitter creates an emitter writing to an http.ResponseWriter.
func NewWriterEmitter(w http.ResponseWriter) *WriterEmitter {
	return internal.NewWriterEmitter(w)
}

// NewStreamEmitter creates an emitter writing only the body to w.
func NewStreamEmitter(w io.Writer) *StreamEmitter {
	return internal.NewStreamEmitter(w)
}

// NewResponseWriter wraps w to track status and bytes written.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return internal.NewResponseWriter(w)
}

// FromHTTP adapts net/http style middleware, such as chi/middleware.
func FromHTTP(mw func(http.Handler) http.Handler) Middleware {
	return internal.FromHTTP(mw)
}

// App options

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http style middleware.
//
// Example:
//
//	hawkbit.New(
//	    hawkbit.WithHTTPMiddleware(middleware.RealIP, middleware.NoCache),
//	)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRouter replaces the default router.
func WithRouter(d Dispatcher) Option {
	return internal.WithRouter(d)
}

// WithConfig sets the configuration. Keys it lacks keep their defaults.
func WithConfig(cfg *Config) Option {
	return internal.WithConfig(cfg)
}

// WithConfigValues sets individual configuration keys.
func WithConfigValues(values map[string]any) Option {
	return internal.WithConfigValues(values)
}

// WithShowErrors sets the "error" key.
func WithShowErrors(show bool) Option {
	return internal.WithShowErrors(show)
}

// WithLogger creates a logger with a component name and optional extractors.
//
// Example:
//
//	hawkbit.New(
//	    hawkbit.WithLogger("api", hawkbit.LifecycleIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithEventSink replaces the default event sink.
func WithEventSink(sink EventSink) Option {
	return internal.WithEventSink(sink)
}

// WithListener subscribes l to phase.
func WithListener(phase string, l Listener) Option {
	return internal.WithListener(phase, l)
}

// WithRenderer replaces the default error renderer.
func WithRenderer(r Renderer) Option {
	return internal.WithRenderer(r)
}

// WithResponseEmitter sets the emitter Run uses.
func WithResponseEmitter(e ResponseEmitter) Option {
	return internal.WithResponseEmitter(e)
}

// WithCLI marks the application as running on the command line.
func WithCLI(cli bool) Option {
	return internal.WithCLI(cli)
}

// WithTerminate toggles lifecycle.complete after a response is sent.
func WithTerminate(enabled bool) Option {
	return internal.WithTerminate(enabled)
}

// WithForceResponseEmitting writes the body to the fallback output when the
// emitter fails.
func WithForceResponseEmitting(force bool) Option {
	return internal.WithForceResponseEmitting(force)
}

// WithOutput sets the fallback output.
func WithOutput(w io.Writer) Option {
	return internal.WithOutput(w)
}

// Run options

// Address sets the HTTP server address.
// Defaults to the server.address config key, then ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
// Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run after the port is bound and
// before serving requests. If any hook fails, the server stops and
// returns the error.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	hawkbit.ShutdownHook(func(context.Context) error {
//	    logger.Flush(2 * time.Second)
//	    return nil
//	})
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context of the server. Cancelling it shuts the
// server down.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Renderer options

// WithRendererDetail toggles the error chain in JSON, XML and HTML output.
func WithRendererDetail(detail bool) RendererOption {
	return internal.WithRendererDetail(detail)
}

// WithRendererTitle sets the HTML page title.
func WithRendererTitle(title string) RendererOption {
	return internal.WithRendererTitle(title)
}

// Request helpers

// Param returns the URL parameter name converted to T, or the zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string) T {
	return internal.Param[T](r, name)
}

// Query returns the query parameter name converted to T, or the zero value.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string) T {
	return internal.Query[T](r, name)
}

// QueryDefault returns the query parameter name converted to T, or defaultValue.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string, defaultValue T) T {
	return internal.QueryDefault(r, name, defaultValue)
}

// WithHeader returns a copy of req with the header set.
func WithHeader(req *http.Request, key, value string) *http.Request {
	return internal.WithHeader(req, key, value)
}

// IsAjaxRequest reports whether r was sent by XMLHttpRequest.
func IsAjaxRequest(r *http.Request) bool {
	return internal.IsAjaxRequest(r)
}

// NewNegotiation collects the render mode inputs of r.
func NewNegotiation(r *http.Request, contentType string, cli bool) Negotiation {
	return internal.NewNegotiation(r, contentType, cli)
}

// SelectRenderMode picks the error output format.
func SelectRenderMode(n Negotiation, showErrors bool) RenderMode {
	return internal.SelectRenderMode(n, showErrors)
}

// ResponseContentType returns the content type of an error response.
func ResponseContentType(n Negotiation) string {
	return internal.ResponseContentType(n)
}

// Normalize converts any raised value into an error.
func Normalize(raw any, r *http.Request, w *Response) error {
	return internal.Normalize(raw, r, w)
}

// LifecycleFromContext returns the lifecycle bound to a request context.
func LifecycleFromContext(ctx context.Context) (*Lifecycle, bool) {
	return internal.LifecycleFromContext(ctx)
}

// LoggerFromContext returns the app logger of the lifecycle bound to ctx.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return internal.LoggerFromContext(ctx)
}

// Output returns the buffered output writer of the pass bound to ctx.
func Output(ctx context.Context) io.Writer {
	return internal.Output(ctx)
}

// Extractors

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromCookie returns a source that reads from a plain cookie.
func FromCookie(name string) ExtractorSource {
	return internal.FromCookie(name)
}

// FromParam returns a source that reads from a URL parameter.
func FromParam(name string) ExtractorSource {
	return internal.FromParam(name)
}

// FromBearerToken returns a source that reads a Bearer token.
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// LifecycleIDExtractor adds lifecycle_id to log entries.
func LifecycleIDExtractor() ContextExtractor {
	return internal.LifecycleIDExtractor()
}

// Error helpers

// StatusFromError maps an error to the status code of its error response.
func StatusFromError(err error) int {
	return internal.StatusFromError(err)
}

// ErrorType returns the dynamic type name of err.
func ErrorType(err error) string {
	return internal.ErrorType(err)
}

// IsFatal reports whether err propagates instead of being translated.
func IsFatal(err error) bool {
	return internal.IsFatal(err)
}

// IsHTTPError returns true if the error is an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError extracts the HTTPError from an error if present.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// IsRouteNotFound returns true if the error is a RouteNotFoundError.
func IsRouteNotFound(err error) bool {
	return internal.IsRouteNotFound(err)
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	return internal.IsPanicError(err)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	return internal.AsPanicError(err)
}

// IsRenderFault returns true if the error is a RenderFaultError.
func IsRenderFault(err error) bool {
	return internal.IsRenderFault(err)
}

// IsInvalidMiddleware returns true if the error is an InvalidMiddlewareError.
func IsInvalidMiddleware(err error) bool {
	return internal.IsInvalidMiddleware(err)
}

// IsContractViolation returns true if the error is a ContractViolationError.
func IsContractViolation(err error) bool {
	return internal.IsContractViolation(err)
}
