package internal

import "net/http"

// Handler declares routes on a router.
//
// Example:
//
//	type PageHandler struct{}
//
//	func (h *PageHandler) Routes(r hawkbit.Router) {
//	    r.GET("/", h.index)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc turns a request and the in-flight response into a response.
// It is the signature of route handlers, of the terminal link of a chain,
// and of the next callable handed to middleware.
type HandlerFunc func(r *http.Request, w *Response) (*Response, error)

// Middleware is one link of the chain. It may delegate to next, post-process
// its result, or short-circuit by returning without calling next.
type Middleware interface {
	Invoke(r *http.Request, w *Response, next HandlerFunc) (*Response, error)
}

// MiddlewareFunc adapts a function to the Middleware interface.
//
// Example:
//
//	wrap := hawkbit.MiddlewareFunc(func(r *http.Request, w *hawkbit.Response, next hawkbit.HandlerFunc) (*hawkbit.Response, error) {
//	    res, err := next(r, w)
//	    if err != nil {
//	        return res, err
//	    }
//	    res.Header().Set("X-Served-By", "hawkbit")
//	    return res, nil
//	})
type MiddlewareFunc func(r *http.Request, w *Response, next HandlerFunc) (*Response, error)

func (f MiddlewareFunc) Invoke(r *http.Request, w *Response, next HandlerFunc) (*Response, error) {
	return f(r, w, next)
}

// ErrorFunc handles an error raised inside the chain. partial is whatever
// response the failing link returned alongside the error, possibly nil.
// Its result becomes the result of the run.
type ErrorFunc func(err error, r *http.Request, w *Response, partial *Response) (*Response, error)

// FromHTTP adapts net/http style middleware, such as the chi/middleware
// package, to a Middleware. The wrapped middleware writes into the
// in-flight response; if it never calls the inner handler the chain is
// short-circuited and the in-flight response is returned.
func FromHTTP(mw func(http.Handler) http.Handler) Middleware {
	if mw == nil {
		return MiddlewareFunc(nil)
	}
	return MiddlewareFunc(func(r *http.Request, w *Response, next HandlerFunc) (*Response, error) {
		var (
			res    *Response
			err    error
			called bool
		)
		inner := http.HandlerFunc(func(_ http.ResponseWriter, hr *http.Request) {
			called = true
			res, err = next(hr, w)
		})
		mw(inner).ServeHTTP(w, r)
		if !called {
			return w, nil
		}
		return res, err
	})
}

func identityHandler(_ *http.Request, w *Response) (*Response, error) {
	return w, nil
}

func rethrow(err error, _ *http.Request, _ *Response, _ *Response) (*Response, error) {
	return nil, err
}
