package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrAlreadyEmitted is returned when a response is emitted to a writer
// that already sent its headers.
var ErrAlreadyEmitted = errors.New("response already emitted")

// ResponseEmitter transmits a finished response.
type ResponseEmitter interface {
	Emit(ctx context.Context, res *Response) error
}

// WriterEmitter emits responses to an http.ResponseWriter.
type WriterEmitter struct {
	w *ResponseWriter
}

// NewWriterEmitter creates an emitter for w.
func NewWriterEmitter(w http.ResponseWriter) *WriterEmitter {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &WriterEmitter{w: rw}
}

// Emit copies headers, status and body to the writer.
func (e *WriterEmitter) Emit(ctx context.Context, res *Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.w.Written() {
		return ErrAlreadyEmitted
	}

	dst := e.w.Header()
	for k, v := range res.Header() {
		dst[k] = append([]string(nil), v...)
	}
	e.w.WriteHeader(statusOrOK(res.StatusCode))

	if _, err := io.WriteString(e.w, bodyOf(res)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// StreamEmitter emits the response body to a plain writer, such as
// stdout for command line runs. Status and headers are not written.
type StreamEmitter struct {
	w io.Writer
}

// NewStreamEmitter creates an emitter for w.
func NewStreamEmitter(w io.Writer) *StreamEmitter {
	return &StreamEmitter{w: w}
}

func (e *StreamEmitter) Emit(_ context.Context, res *Response) error {
	if _, err := io.WriteString(e.w, bodyOf(res)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// bodyOf returns the content of res; a response without a body is empty.
func bodyOf(res *Response) string {
	if res.Body == nil {
		return ""
	}
	return res.Body.String()
}

func statusOrOK(code int) int {
	if code < 100 || code > 999 {
		return http.StatusOK
	}
	return code
}
