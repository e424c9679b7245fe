package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope of every message the server publishes. Type is
// "<aggregate>.<action>", e.g. review.created.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Aggregate     string          `json:"aggregate"`
	Action        string          `json:"action"`
	AggregateID   string          `json:"aggregate_id"`
	Source        string          `json:"source,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// EventOption sets optional envelope fields.
type EventOption func(*Event)

func WithSource(source string) EventOption {
	return func(e *Event) { e.Source = source }
}

// WithCorrelationID links the event to the request that caused it. An
// empty id leaves the field unset.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) { e.CorrelationID = id }
}

// NewEvent encodes data into a new envelope about aggregateID.
func NewEvent(aggregate, action, aggregateID string, data any, opts ...EventOption) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s payload: %w", aggregate, action, err)
	}

	e := &Event{
		ID:          uuid.NewString(),
		Type:        aggregate + "." + action,
		Aggregate:   aggregate,
		Action:      action,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Topic is the topic the event is published to.
func (e *Event) Topic() string {
	return Topic(e.Aggregate, e.Action)
}

// DecodeEvent parses an envelope read back from a topic.
func DecodeEvent(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// DecodeData unmarshals the payload into v.
func (e *Event) DecodeData(v any) error {
	return json.Unmarshal(e.Data, v)
}
