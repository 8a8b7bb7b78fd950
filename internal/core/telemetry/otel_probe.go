package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userdir/internal/core/port"
	"userdir/pkg/config"
)

const tracerName = "userdir"

// OTELProbe implements port.Telemetry on top of OpenTelemetry and the
// service logger.
type OTELProbe struct {
	logger *config.Logger
}

func NewOTELProbe(logger *config.Logger) port.Telemetry {
	return &OTELProbe{logger: logger}
}

type OTelSpan struct {
	span trace.Span
}

func (s *OTelSpan) End() {
	s.span.End()
}

func (s *OTelSpan) SetAttributes(attrs map[string]interface{}) {
	s.span.SetAttributes(toAttributes(attrs)...)
}

func (s *OTelSpan) SetStatus(code string, message string) {
	switch code {
	case "ok":
		s.span.SetStatus(codes.Ok, message)
	case "error":
		s.span.SetStatus(codes.Error, message)
	default:
		s.span.SetStatus(codes.Unset, message)
	}
}

func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func toAttributes(attrs map[string]interface{}) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))

	for key, value := range attrs {
		switch v := value.(type) {
		case string:
			out = append(out, attribute.String(key, v))
		case int:
			out = append(out, attribute.Int(key, v))
		case int64:
			out = append(out, attribute.Int64(key, v))
		case float64:
			out = append(out, attribute.Float64(key, v))
		case bool:
			out = append(out, attribute.Bool(key, v))
		default:
			out = append(out, attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}

	return out
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs map[string]interface{}) (context.Context, port.Span) {
	spanAttrs := append([]attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}, toAttributes(attrs)...)

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("repository.%s.%s", entity, operation), trace.WithAttributes(spanAttrs...))

	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, attrs map[string]interface{}) (context.Context, port.Span) {
	spanAttrs := append([]attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("component", "service"),
	}, toAttributes(attrs)...)

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("service.%s.%s", service, operation), trace.WithAttributes(spanAttrs...))

	return ctx, &OTelSpan{span: span}
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Ctx(ctx).Error("Repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	span.AddEvent(fmt.Sprintf("%s.%s", entity, event), trace.WithAttributes(
		append(toAttributes(metadata), attribute.String("entity_id", entityID))...,
	))

	p.logger.Ctx(ctx).Debug("Business event recorded",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID),
		zap.Any("metadata", metadata))
}
