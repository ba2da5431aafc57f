package observability

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/designcise/hawkbit/internal"
)

// TracerName is the instrumentation name used when no tracer is given.
const TracerName = "github.com/designcise/hawkbit"

// Tracing returns middleware that wraps the rest of the chain in a server
// span. The request passed down carries the span. A nil tracer uses the
// global tracer provider.
func Tracing(tracer trace.Tracer) internal.Middleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}

	return internal.MiddlewareFunc(func(r *http.Request, w *internal.Response, next internal.HandlerFunc) (*internal.Response, error) {
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		}
		if l, ok := internal.LifecycleFromContext(r.Context()); ok {
			attrs = append(attrs, attribute.String("hawkbit.lifecycle_id", l.ID()))
		}

		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		res, err := next(r.WithContext(ctx), w)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.Int("http.response.status_code", internal.StatusFromError(err)))
			return res, err
		}
		if res != nil {
			span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		}
		return res, nil
	})
}
