package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanWrapper_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	boom := errors.New("boom")

	err := SpanWrapper(context.Background(), "todos.add", nil, func(ctx context.Context) error {
		assert.NotEmpty(t, GetTraceID(ctx))
		assert.NotEmpty(t, GetSpanID(ctx))
		return boom
	})

	assert.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "todos.add", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
	assert.Equal(t, "", GetSpanID(context.Background()))
}
