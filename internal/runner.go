package internal

import (
	"net/http"
	"reflect"
	"runtime"
	"slices"
)

// panicStackSize is the maximum stack trace captured for recovered panics.
const panicStackSize = 4096

// Runner composes an ordered list of middleware around a final handler.
// The first middleware added runs first and wraps everything after it.
// A Runner is safe to share once its list is no longer modified.
type Runner struct {
	middlewares []Middleware
}

// NewRunner creates a runner for the given middleware, in execution order.
func NewRunner(mw ...Middleware) *Runner {
	return &Runner{middlewares: slices.Clone(mw)}
}

// Add appends middleware to the end of the chain.
func (rn *Runner) Add(mw ...Middleware) *Runner {
	rn.middlewares = append(rn.middlewares, mw...)
	return rn
}

// Middlewares returns a copy of the chain.
func (rn *Runner) Middlewares() []Middleware {
	return slices.Clone(rn.middlewares)
}

// Run executes the chain with final as its innermost link.
// A nil final returns the in-flight response unchanged; a nil onError
// returns the error to the caller. Any error or panic from a link aborts
// the chain and onError decides the result. A nil chain entry fails with
// InvalidMiddlewareError, which never reaches onError.
func (rn *Runner) Run(r *http.Request, w *Response, final HandlerFunc, onError ErrorFunc) (*Response, error) {
	if final == nil {
		final = identityHandler
	}
	if onError == nil {
		onError = rethrow
	}

	chain, err := rn.resolve(final)
	if err != nil {
		return nil, err
	}

	res, err := chain(r, w)
	if err != nil {
		return onError(err, r, w, res)
	}
	return res, nil
}

// resolve folds the chain right to left, starting from a no-op terminal.
func (rn *Runner) resolve(final HandlerFunc) (HandlerFunc, error) {
	links := append(slices.Clone(rn.middlewares), MiddlewareFunc(func(r *http.Request, w *Response, _ HandlerFunc) (*Response, error) {
		return final(r, w)
	}))

	next := HandlerFunc(identityHandler)
	for i := len(links) - 1; i >= 0; i-- {
		m := links[i]
		if isNilMiddleware(m) {
			return nil, &InvalidMiddlewareError{Index: i}
		}
		next = link(m, next)
	}
	return next, nil
}

func link(m Middleware, next HandlerFunc) HandlerFunc {
	return func(r *http.Request, w *Response) (res *Response, err error) {
		if cerr := r.Context().Err(); cerr != nil {
			return nil, cerr
		}
		defer func() {
			if v := recover(); v != nil {
				stack := make([]byte, panicStackSize)
				stack = stack[:runtime.Stack(stack, false)]
				res, err = nil, &PanicError{Value: v, Stack: stack}
			}
		}()
		return m.Invoke(r, w, next)
	}
}

func isNilMiddleware(m Middleware) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Interface, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}
