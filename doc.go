// Package hawkbit provides a small HTTP application core built around a
// middleware chain, lifecycle events and error translation.
//
// An application owns the shared collaborators: router, global middleware,
// event sink, error renderer, configuration and logger. Each request runs
// as an independent [Lifecycle] pass, so one App serves concurrent requests.
//
// # Quick Start
//
//	app := hawkbit.New(
//	    hawkbit.WithLogger("api", hawkbit.LifecycleIDExtractor()),
//	    hawkbit.WithMiddleware(middlewares.RequestID()),
//	    hawkbit.WithHandlers(handlers.NewPages()),
//	)
//
//	if err := app.Serve(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type PagesHandler struct{}
//
//	func (h *PagesHandler) Routes(r hawkbit.Router) {
//	    r.GET("/", h.index)
//	    r.GET("/users/{id}", h.user)
//	}
//
//	func (h *PagesHandler) index(r *http.Request, w *hawkbit.Response) (*hawkbit.Response, error) {
//	    _, err := w.WriteString("<h1>It works!</h1>")
//	    return w, err
//	}
//
// # Middleware
//
// A [Middleware] receives the request, the in-flight response and the next
// callable. It may short-circuit by returning without calling next, replace
// the response, or return an error:
//
//	var wrap = hawkbit.MiddlewareFunc(func(r *http.Request, w *hawkbit.Response, next hawkbit.HandlerFunc) (*hawkbit.Response, error) {
//	    w.WriteString("<div>")
//	    res, err := next(r, w)
//	    if err != nil {
//	        return nil, err
//	    }
//	    res.WriteString("</div>")
//	    return res, nil
//	})
//
// net/http middleware is adapted with [FromHTTP] or [WithHTTPMiddleware].
// A whole App can be used as middleware of another with App.AsMiddleware.
//
// # Lifecycle Events
//
// Listeners subscribe to named phases. A pass emits, in order:
//
//	request.received -> response.created -> response.sent -> lifecycle.complete -> system.shutdown
//
// Failures additionally emit runtime.error and lifecycle.error. Listeners
// may replace the request or response carried by the [Event].
//
//	hawkbit.New(
//	    hawkbit.WithListener(hawkbit.PhaseRuntimeError, func(e *hawkbit.Event) error {
//	        slog.Error("request failed", "error", e.Err)
//	        return nil
//	    }),
//	)
//
// # Error Translation
//
// Errors returned or panicked in the chain are rendered into a fresh error
// response. The format follows content negotiation: plain text on the
// command line, JSON for AJAX or JSON requests, XML for XML requests and
// HTML otherwise. The "error" config key shows error details; with
// "error.catch" set to false, errors propagate to the caller instead.
//
// Route misses map to 404, errors implementing [StatusCoder] to their own
// status, everything else to 500.
package hawkbit
