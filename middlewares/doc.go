// Package middlewares provides middleware for hawkbit applications.
//
// Every middleware here is an internal.Middleware and runs inside the
// lifecycle's runner, so errors it returns are translated into error
// responses like any handler error.
//
// # Request ID
//
// RequestID assigns a ULID to each request unless an upstream header
// already carries one. The ID is stored in the request context and set as a
// response header.
//
//	app := hawkbit.New(
//	    hawkbit.WithLogger("api", middlewares.RequestIDExtractor()),
//	    hawkbit.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// The runner already turns panics into *PanicError. Recover reports them
// with a bounded stack trace to the app logger:
//
//	hawkbit.WithMiddleware(middlewares.Recover())
//
// # Timeout
//
// Timeout bounds the rest of the chain and returns *TimeoutError, which
// renders as 504 Gateway Timeout. The chain keeps running after the
// deadline; watch r.Context().Done() for early termination.
//
//	hawkbit.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # CORS
//
// CORS handles Cross-Origin Resource Sharing headers and answers preflight
// requests with 204:
//
//	hawkbit.WithMiddleware(
//	    middlewares.CORS(
//	        middlewares.WithAllowOrigins("https://app.example.com"),
//	        middlewares.WithAllowCredentials(),
//	    ),
//	)
package middlewares
