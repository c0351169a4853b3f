package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "curiohub"

// TraceCardAction opens a span around one vote or bookmark action.
func TraceCardAction(ctx context.Context, action, submissionID, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "card."+action,
		trace.WithAttributes(
			attribute.String("card.action", action),
			attribute.String("submission.id", submissionID),
			attribute.String("user.id", userID),
		),
	)
}

// TraceGetFeed opens a span for a feed or discover query.
func TraceGetFeed(ctx context.Context, feedType, source string, tags []string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "feed.get",
		trace.WithAttributes(
			attribute.String("feed.type", feedType),
			attribute.String("feed.source", source),
			attribute.StringSlice("feed.tags", tags),
		),
	)
}

// EndWithOutcome records the action outcome on span and ends it. Outcomes
// other than "ok" and "noop" mark the span as errored.
func EndWithOutcome(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("card.outcome", outcome))
	if outcome != "ok" && outcome != "noop" {
		msg := outcome
		if err != nil {
			span.RecordError(err)
			msg = err.Error()
		}
		span.SetStatus(codes.Error, msg)
	}
	span.End()
}
