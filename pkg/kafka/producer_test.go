package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(msg kafka.Message, key string) string {
	return NewHeaderCarrier(&msg.Headers).Get(key)
}

func TestProducer_PublishWritesKeyedMessage(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, []string{"localhost:9092"}, testLogger())

	event, err := NewEvent("review", "created", "65f1a2b3c4d5e6f708192a3b",
		map[string]any{"email": "a@x.com"},
		WithSource("journalist-service"), WithCorrelationID("corr-7"))
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "journalist.review.created", msg.Topic)
	assert.Equal(t, "65f1a2b3c4d5e6f708192a3b", string(msg.Key))
	assert.Equal(t, "review.created", header(msg, "event_type"))
	assert.Equal(t, "journalist-service", header(msg, "source"))
	assert.Equal(t, "corr-7", header(msg, "correlation_id"))

	decoded, err := DecodeEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "created", decoded.Action)

	var payload map[string]any
	require.NoError(t, decoded.DecodeData(&payload))
	assert.Equal(t, "a@x.com", payload["email"])
}

func TestProducer_PublishOmitsEmptyHeaders(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, nil, testLogger())

	event, err := NewEvent("service", "deleted", "id", nil, WithCorrelationID(""))
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), event))

	keys := NewHeaderCarrier(&w.msgs[0].Headers).Keys()
	assert.Contains(t, keys, "event_type")
	assert.NotContains(t, keys, "source")
	assert.NotContains(t, keys, "correlation_id")
}

func TestProducer_PublishInjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := &recordingWriter{}
	p := newProducer(w, nil, testLogger())
	event, err := NewEvent("service", "deleted", "id", nil)
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, event))

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", header(w.msgs[0], "traceparent"))
}

func TestProducer_PublishFailureCounted(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := newProducer(w, nil, testLogger())
	topic := Topic("service", "updated")

	before := testutil.ToFloat64(eventsPublished.WithLabelValues(topic, outcomeError))
	event, err := NewEvent("service", "updated", "id", map[string]int{"matched": 1})
	require.NoError(t, err)

	err = p.Publish(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write service.updated to journalist.service.updated")
	assert.Equal(t, before+1, testutil.ToFloat64(eventsPublished.WithLabelValues(topic, outcomeError)))
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, newProducer(w, nil, testLogger()).Close())
	assert.True(t, w.closed)
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("review", "updated", "abc", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "review.updated", event.Type)
	assert.Equal(t, "journalist.review.updated", event.Topic())
	assert.False(t, event.OccurredAt.IsZero())
	assert.JSONEq(t, "null", string(event.Data))

	_, err = NewEvent("review", "created", "id", make(chan int))
	assert.Error(t, err)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	_, err := DecodeEvent([]byte("{"))
	assert.ErrorContains(t, err, "decode event")
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.EqualError(t, PingBrokers(context.Background(), nil), "kafka: no brokers configured")
}

func TestHeaderCarrier_SetReplaces(t *testing.T) {
	var headers []kafka.Header
	c := NewHeaderCarrier(&headers)

	c.Set("traceparent", "a")
	c.Set("tracestate", "b")
	c.Set("traceparent", "c")

	assert.Equal(t, "c", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.Equal(t, []string{"traceparent", "tracestate"}, c.Keys())
	assert.Len(t, headers, 2)
}
