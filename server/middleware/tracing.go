package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/observability"
)

// Tracing starts a server span per request, continuing any incoming W3C
// trace context.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := observability.StartServerSpan(ctx, fmt.Sprintf("%s %s", c.Request.Method, route),
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
		)
		defer span.End()
		if id := observability.TraceID(ctx); id != "" {
			ctx = logger.ContextWithTraceID(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
	}
}
