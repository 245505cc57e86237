package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes spans started outside the HTTP middleware
const TracerName = "webstudio-backend"

// Span attribute keys
const (
	SpanAttrJob        = "job.name"
	SpanAttrJobAttempt = "job.attempt"
	SpanAttrAuditURL   = "audit.url"
	SpanAttrDomain     = "audit.domain"
	SpanAttrLocale     = "locale"
)

// StartSpan opens an internal span on the global tracer; close it with EndSpan.
//
//	ctx, span := telemetry.StartSpan(ctx, "audit.execute", attribute.String(telemetry.SpanAttrAuditURL, url))
//	defer func() { telemetry.EndSpan(span, err) }()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}

// EndSpan records err, if any, sets the status and ends the span
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
