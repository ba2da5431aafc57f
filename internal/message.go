package internal

import (
	"bytes"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
)

// Content types produced by the response factory.
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Stream is an in-memory message body.
// A closed stream is neither readable nor writable.
type Stream struct {
	buf      bytes.Buffer
	readOnly bool
	closed   bool
}

// NewStream creates a writable stream holding content.
func NewStream(content string) *Stream {
	s := &Stream{}
	s.buf.WriteString(content)
	return s
}

// NewReadOnlyStream creates a stream that rejects writes.
func NewReadOnlyStream(content string) *Stream {
	s := NewStream(content)
	s.readOnly = true
	return s
}

func (s *Stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrStreamClosed
	}
	if s.readOnly {
		return 0, ErrStreamNotWritable
	}
	return s.buf.Write(p)
}

func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Read consumes the stream. Use String to inspect it without consuming.
func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.EOF
	}
	return s.buf.Read(p)
}

// String returns the unread content. It is empty once the stream is closed.
func (s *Stream) String() string {
	if s.closed {
		return ""
	}
	return s.buf.String()
}

func (s *Stream) Len() int {
	if s.closed {
		return 0
	}
	return s.buf.Len()
}

func (s *Stream) IsReadable() bool { return !s.closed }

func (s *Stream) IsWritable() bool { return !s.closed && !s.readOnly }

func (s *Stream) IsClosed() bool { return s.closed }

// Clone returns an independent copy of the stream with the same unread
// content and state.
func (s *Stream) Clone() *Stream {
	c := &Stream{readOnly: s.readOnly, closed: s.closed}
	c.buf.Write(s.buf.Bytes())
	return c
}

// Close releases the buffer. Closing twice is a no-op.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Reset()
	return nil
}

// Response is a mutable HTTP response flowing through the lifecycle.
// It implements http.ResponseWriter, so net/http handlers and middlewares
// can write into it directly.
type Response struct {
	Body       *Stream
	header     http.Header
	StatusCode int
}

// NewResponse creates an empty 200 response with the given content type.
func NewResponse(contentType string) *Response {
	r := &Response{
		StatusCode: http.StatusOK,
		header:     make(http.Header),
		Body:       NewStream(""),
	}
	if contentType != "" {
		r.header.Set("Content-Type", contentType)
	}
	return r
}

func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

func (r *Response) Write(p []byte) (int, error) {
	if r.Body == nil {
		r.Body = NewStream("")
	}
	return r.Body.Write(p)
}

// WriteHeader sets the status code. It can be called more than once;
// the response is not on the wire until it is emitted.
func (r *Response) WriteHeader(code int) {
	r.StatusCode = code
}

// SetStatus sets the status code and returns the response.
func (r *Response) SetStatus(code int) *Response {
	r.StatusCode = code
	return r
}

// WriteString appends s to the body.
func (r *Response) WriteString(s string) (int, error) {
	return r.Write([]byte(s))
}

// WriteJSON encodes v into the body and sets the JSON content type.
func (r *Response) WriteJSON(v any) error {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return err
	}
	r.Header().Set("Content-Type", ContentTypeJSON)
	_, err = r.Write(data)
	return err
}

// Clone returns a deep copy of the response. Writes to the copy never
// reach r.
func (r *Response) Clone() *Response {
	c := &Response{
		StatusCode: r.StatusCode,
		header:     r.Header().Clone(),
	}
	if r.Body != nil {
		c.Body = r.Body.Clone()
	}
	return c
}

// ContentType returns the Content-Type header value.
func (r *Response) ContentType() string {
	return r.Header().Get("Content-Type")
}

// WithHeader returns a shallow copy of req with the header set.
// The original request is left untouched.
func WithHeader(req *http.Request, key, value string) *http.Request {
	clone := req.Clone(req.Context())
	clone.Header.Set(key, value)
	return clone
}
