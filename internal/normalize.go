package internal

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// maxNormalizeDepth bounds recursion through error producers that return
// further producers.
const maxNormalizeDepth = 8

// ErrorProducer is a deferred error value. Normalize invokes it with the
// current request and response and normalises the result.
type ErrorProducer func(r *http.Request, w *Response) any

// Normalize converts an arbitrary failure value into a single error.
//
//   - error values are returned unchanged
//   - ErrorProducer (or a func with the same shape) is invoked and its result normalised
//   - fmt.Stringer values use their String method
//   - other structs and pointers are described by type name
//   - slices and arrays are joined with newlines
//   - scalars become the message of a generic error
func Normalize(raw any, r *http.Request, w *Response) error {
	return normalize(raw, r, w, 0)
}

func normalize(raw any, r *http.Request, w *Response, depth int) error {
	switch v := raw.(type) {
	case nil:
		return errors.New("error with nil")
	case error:
		return v
	case ErrorProducer:
		return normalizeProduced(v, r, w, depth)
	case func(*http.Request, *Response) any:
		return normalizeProduced(v, r, w, depth)
	case fmt.Stringer:
		return errors.New(v.String())
	case string:
		return errors.New(v)
	case []string:
		return errors.New(strings.Join(v, "\n"))
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return errors.New(fmt.Sprint(raw))
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return errors.New(strings.Join(parts, "\n"))
	case reflect.Struct, reflect.Pointer:
		return fmt.Errorf("error with object %s", rv.Type())
	default:
		return fmt.Errorf("error with %s", rv.Kind())
	}
}

func normalizeProduced(fn func(*http.Request, *Response) any, r *http.Request, w *Response, depth int) error {
	if fn == nil {
		return errors.New("error with nil producer")
	}
	if depth >= maxNormalizeDepth {
		return errors.New("error producer nesting too deep")
	}
	return normalize(fn(r, w), r, w, depth+1)
}
