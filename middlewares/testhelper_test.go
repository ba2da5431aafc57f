package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/designcise/hawkbit/internal"
)

// run passes r through mw into h and returns the chain result.
func run(mw internal.Middleware, r *http.Request, h internal.HandlerFunc) (*internal.Response, error) {
	return internal.NewRunner(mw).Run(r, internal.NewResponse(internal.ContentTypeHTML), h, nil)
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func ok(_ *http.Request, w *internal.Response) (*internal.Response, error) {
	return w, nil
}
