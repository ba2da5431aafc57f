package internal

import (
	"net/http"
	"sync/atomic"
)

// ResponseWriter records what an emitter put on the wire, so ServeHTTP
// knows whether a failed pass can still answer with a 500.
type ResponseWriter struct {
	http.ResponseWriter
	status  atomic.Int32
	size    atomic.Int64
	written atomic.Bool
}

// NewResponseWriter wraps w. The status reads 200 until a header is sent.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	rw := &ResponseWriter{ResponseWriter: w}
	rw.status.Store(http.StatusOK)
	return rw
}

// WriteHeader sends the status line. Calls after the first are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	if !w.written.CompareAndSwap(false, true) {
		return
	}
	w.status.Store(int32(code)) //nolint:gosec // HTTP status codes fit in int32
	w.ResponseWriter.WriteHeader(code)
}

// Write sends b, sending the recorded status first if needed.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.written.CompareAndSwap(false, true) {
		w.ResponseWriter.WriteHeader(int(w.status.Load()))
	}
	n, err := w.ResponseWriter.Write(b)
	w.size.Add(int64(n))
	return n, err
}

// Status returns the status that was sent, or 200.
func (w *ResponseWriter) Status() int { return int(w.status.Load()) }

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 { return w.size.Load() }

// Written reports whether the status line went out.
func (w *ResponseWriter) Written() bool { return w.written.Load() }

// Unwrap returns the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
