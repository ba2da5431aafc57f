package internal

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Dispatcher resolves a request to a handler and invokes it.
// Dispatch returns a *RouteNotFoundError when no route matches.
type Dispatcher interface {
	Dispatch(r *http.Request, w *Response) (*Response, error)
}

// RouteMatcher is implemented by dispatchers that can tell whether a
// request has a route without dispatching it.
type RouteMatcher interface {
	Match(r *http.Request) bool
}

// Router is the interface handlers use to declare routes.
// It provides HTTP method routing and grouping capabilities.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, mw ...Middleware)

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, mw ...Middleware)

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, mw ...Middleware)

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// HEAD registers a handler for HEAD requests.
	HEAD(path string, h HandlerFunc, mw ...Middleware)

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc, mw ...Middleware)

	// Group creates an inline route group.
	// Middleware added inside fn applies to the group only.
	Group(fn func(r Router))

	// Route creates a route group with a pattern prefix.
	// All routes defined inside fn share the pattern prefix.
	Route(pattern string, fn func(r Router))

	// Use appends middleware for the routes registered after it.
	Use(mw ...Middleware)

	// Mount attaches an http.Handler at the given pattern.
	// The handler writes straight into the in-flight response.
	Mount(pattern string, h http.Handler)
}

// RoutesFunc adapts a function to the Handler interface.
type RoutesFunc func(r Router)

func (f RoutesFunc) Routes(r Router) { f(r) }

type dispatchKey struct{}

// dispatchResult carries a route handler's result out of chi.
type dispatchResult struct {
	res  *Response
	err  error
	done bool
}

// Mux is the default Dispatcher, backed by a chi router.
type Mux struct {
	mux *chi.Mux
	routerAdapter
}

// NewMux creates an empty router. Unmatched requests dispatch to
// *RouteNotFoundError, wrong methods to *MethodNotAllowedError.
func NewMux() *Mux {
	m := &Mux{mux: chi.NewRouter()}
	m.routerAdapter = routerAdapter{router: m.mux}

	m.mux.NotFound(func(_ http.ResponseWriter, r *http.Request) {
		setDispatchResult(r, nil, &RouteNotFoundError{Method: r.Method, Path: r.URL.Path})
	})
	m.mux.MethodNotAllowed(func(_ http.ResponseWriter, r *http.Request) {
		setDispatchResult(r, nil, &MethodNotAllowedError{Method: r.Method, Path: r.URL.Path})
	})
	return m
}

// Dispatch routes r and returns the matched handler's result.
func (m *Mux) Dispatch(r *http.Request, w *Response) (*Response, error) {
	out := &dispatchResult{}
	m.mux.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), dispatchKey{}, out)))

	switch {
	case !out.done:
		// Mounted http.Handler wrote into w.
		return w, nil
	case out.err != nil:
		return out.res, out.err
	case out.res == nil:
		return nil, &ContractViolationError{Subject: "route handler result", Want: "a non-nil *Response"}
	}
	return out.res, nil
}

// Match reports whether a route is registered for the method and path
// of r, mounted handlers included.
func (m *Mux) Match(r *http.Request) bool {
	path := r.URL.RawPath
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}
	return m.mux.Match(chi.NewRouteContext(), r.Method, path)
}

func setDispatchResult(r *http.Request, res *Response, err error) {
	if out, ok := r.Context().Value(dispatchKey{}).(*dispatchResult); ok {
		out.res, out.err, out.done = res, err, true
	}
}

// routerAdapter wraps chi.Router to implement the Router interface.
type routerAdapter struct {
	router      chi.Router
	middlewares []Middleware
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Get(path, r.wrap(h, mw...))
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Post(path, r.wrap(h, mw...))
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Put(path, r.wrap(h, mw...))
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Patch(path, r.wrap(h, mw...))
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Delete(path, r.wrap(h, mw...))
}

func (r *routerAdapter) HEAD(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Head(path, r.wrap(h, mw...))
}

func (r *routerAdapter) OPTIONS(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Options(path, r.wrap(h, mw...))
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) {
		fn(&routerAdapter{router: cr, middlewares: slices.Clone(r.middlewares)})
	})
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) {
		fn(&routerAdapter{router: cr, middlewares: slices.Clone(r.middlewares)})
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

// wrap runs group middleware, then route middleware, around h.
func (r *routerAdapter) wrap(h HandlerFunc, mw ...Middleware) http.HandlerFunc {
	runner := NewRunner(slices.Concat(r.middlewares, mw)...)
	return func(hw http.ResponseWriter, req *http.Request) {
		w, ok := hw.(*Response)
		if !ok {
			w = NewResponse(ContentTypeHTML)
		}
		res, err := runner.Run(req, w, h, nil)
		setDispatchResult(req, res, err)
	}
}
