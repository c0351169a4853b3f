package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware returns otelgin followed by a handler that tags the
// server span with the caller, request ID and listing filters. Register
// both with r.Use(TracingMiddleware(name)...).
func TracingMiddleware(serviceName string) gin.HandlersChain {
	return gin.HandlersChain{otelgin.Middleware(serviceName), enrichSpan}
}

func enrichSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if userID := c.GetString("user_id"); userID != "" {
		span.SetAttributes(attribute.String("user.id", userID))
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	if source := c.Query("source"); source != "" {
		span.SetAttributes(attribute.String("feed.source", source))
	}
	if tags := c.Query("tags"); tags != "" {
		span.SetAttributes(attribute.String("feed.tags", tags))
	}
	for _, ginErr := range c.Errors {
		span.RecordError(ginErr.Err)
		span.SetStatus(codes.Error, ginErr.Error())
	}
}
