package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	ErrStreamNotWritable = errors.New("hawkbit: stream is not writable")
	ErrStreamClosed      = errors.New("hawkbit: stream is closed")
	ErrEventName         = errors.New("hawkbit: event name is required")
	ErrNoRequest         = errors.New("hawkbit: request is required")
)

// StatusCoder is implemented by errors that declare their own HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an error carrying an HTTP status code.
// Returning it from a handler makes the error response use Code
// instead of the default 500.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Code is the HTTP status code (e.g., 403, 409).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// RouteNotFoundError is returned by the router when no route matches.
// It always maps to 404.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("route not found: %s %s", e.Method, e.Path)
}

func (e *RouteNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// MethodNotAllowedError is returned by the router when the path matches
// but the method does not.
type MethodNotAllowedError struct {
	Method string
	Path   string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method not allowed: %s %s", e.Method, e.Path)
}

func (e *MethodNotAllowedError) StatusCode() int {
	return http.StatusMethodNotAllowed
}

// PanicError represents a panic recovered while running the middleware chain.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RenderFaultError wraps a failure of the error renderer.
// It is recorded on the exception stack and never aborts error handling.
type RenderFaultError struct {
	Err  error
	Mode RenderMode
}

func (e *RenderFaultError) Error() string {
	return fmt.Sprintf("render %s error page: %v", e.Mode, e.Err)
}

func (e *RenderFaultError) Unwrap() error {
	return e.Err
}

// InvalidMiddlewareError is returned when a chain entry cannot be invoked.
// It is fatal to the current pass.
type InvalidMiddlewareError struct {
	Index int
}

func (e *InvalidMiddlewareError) Error() string {
	return fmt.Sprintf("middleware at position %d is not callable", e.Index)
}

// ContractViolationError reports a broken internal invariant, for example
// a handler that returns neither a response nor an error.
// It is fatal to the current pass.
type ContractViolationError struct {
	Subject string
	Want    string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s needs to be %s", e.Subject, e.Want)
}

// StatusFromError maps an error to the status code of its error response.
func StatusFromError(err error) int {
	if IsRouteNotFound(err) {
		return http.StatusNotFound
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// IsFatal reports whether err must propagate instead of being translated
// into a response.
func IsFatal(err error) bool {
	return IsInvalidMiddleware(err) || IsContractViolation(err)
}

// Helper functions for error inspection.

func IsHTTPError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

func IsRouteNotFound(err error) bool {
	var nf *RouteNotFoundError
	return errors.As(err, &nf)
}

func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func IsRenderFault(err error) bool {
	var rf *RenderFaultError
	return errors.As(err, &rf)
}

func IsInvalidMiddleware(err error) bool {
	var im *InvalidMiddlewareError
	return errors.As(err, &im)
}

func IsContractViolation(err error) bool {
	var cv *ContractViolationError
	return errors.As(err, &cv)
}
