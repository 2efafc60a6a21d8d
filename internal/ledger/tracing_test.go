package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	s := seed(1, "3")
	l := newTestLedger(s, WithTracer(tp.Tracer("test")))

	r, err := l.Open(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = l.Open(context.Background(), 2, 10)
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "ledger.Open", ok.Name())
	assert.Equal(t, codes.Unset, ok.Status().Code)
	v, found := attr(ok, "rental.id")
	require.True(t, found)
	assert.Equal(t, int64(r.ID), v.AsInt64())

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	v, found = attr(failed, "ledger.error_kind")
	require.True(t, found)
	assert.Equal(t, string(OutOfStock), v.AsString())
}
