package internal

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Param returns the URL parameter name converted to T, or the zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string) T {
	v, _ := convertParam[T](chi.URLParam(r, name))
	return v
}

func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string) T {
	v, _ := convertParam[T](r.URL.Query().Get(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](r *http.Request, name string, defaultValue T) T {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
func convertParam[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var zero T
	var (
		v   any
		err error
	)
	switch any(zero).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	return v.(T), true
}
