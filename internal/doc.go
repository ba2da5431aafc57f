// Package internal provides the core types and implementation for the hawkbit framework.
//
// This package is internal and should not be used directly. Import "github.com/designcise/hawkbit"
// instead, which re-exports the public API.
//
// # Core Types
//
//   - App: Shared, immutable collaborators (router, middleware, event sink, renderer, config, logger)
//   - Lifecycle: One request-handling pass with its own exception stack, event and bound request
//   - Runner: Composes middleware around a final handler and routes failures to an error callback
//   - Middleware: One link of the chain, Invoke(r, w, next)
//   - HandlerFunc: Route handler and next-callable signature, (r, w) -> (*Response, error)
//   - Event: Mutable record handed to listeners at each phase
//   - Emitter: Default synchronous EventSink with wildcard support
//   - Renderer: Formats errors as plain text, JSON, XML or HTML
//   - Config: Key/value configuration with dot-path lookup
//
// # Lifecycle Phases
//
// A pass emits, in order:
//
//	request.received -> response.created -> response.sent -> lifecycle.complete -> system.shutdown
//
// Failures during dispatch additionally emit runtime.error and lifecycle.error;
// render failures emit handle.error; errors escaping ServeHTTP emit system.exception.
// system.shutdown fires exactly once per pass on every exit path.
//
// # Application Structure
//
//	app := internal.New(
//	    internal.WithHandlers(pageHandler),
//	    internal.WithMiddleware(requestID, timeout),
//	    internal.WithShowErrors(true),
//	)
//
// # Handler Pattern
//
// Handlers implement the Handler interface and declare routes:
//
//	type PageHandler struct{}
//
//	func (h *PageHandler) Routes(r internal.Router) {
//	    r.GET("/", h.index)
//	}
//
//	func (h *PageHandler) index(r *http.Request, w *internal.Response) (*internal.Response, error) {
//	    _, err := w.WriteString("<h1>It works!</h1>")
//	    return w, err
//	}
//
// # Error Translation
//
// Errors returned or panicked inside the chain are normalized, pushed onto
// the lifecycle's ExceptionStack, rendered according to content
// negotiation and written into a fresh error response. Route misses map to
// 404, errors implementing StatusCoder to their own status, everything else
// to 500. Setting "error.catch" to false while "error" is true propagates
// the error to the caller instead.
package internal
