package tracing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/sairex/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "sairex/http"

// billingParams are route params copied onto the span so a trace can be
// found from a challan or an organization.
var billingParams = map[string]string{
	"org_code":     "sairex.org_code",
	"challan_no":   "sairex.challan_no",
	"admission_no": "sairex.admission_no",
}

// GinMiddleware starts a server span per request. Register it after the
// logging middleware so the request id is on the context.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}
		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			attrs = append(attrs, attribute.String("request_id", requestID))
		}
		for _, p := range c.Params {
			if key, ok := billingParams[p.Key]; ok {
				attrs = append(attrs, attribute.String(key, p.Value))
			}
		}
		span.SetAttributes(attrs...)

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status < http.StatusInternalServerError {
			return
		}
		if last := c.Errors.Last(); last != nil {
			span.RecordError(last.Err)
		}
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
