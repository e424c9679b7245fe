// Package event publishes document lifecycle events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/journalist-service/server/internal/domain"
	pkgkafka "github.com/journalist-service/server/pkg/kafka"
	"github.com/journalist-service/server/pkg/logger"
)

// SourceJournalist identifies events originating from this server.
const SourceJournalist = "journalist-service"

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Aggregate types, one per collection.
const (
	AggregateService = "service"
	AggregateReview  = "review"
)

// AggregateFor maps a collection name to its aggregate type.
func AggregateFor(collection string) string {
	switch collection {
	case domain.CollectionServices:
		return AggregateService
	case domain.CollectionReviews:
		return AggregateReview
	default:
		return collection
	}
}

// Publisher publishes document lifecycle events.
type Publisher interface {
	DocumentCreated(ctx context.Context, aggregate string, doc domain.Document) error
	DocumentUpdated(ctx context.Context, aggregate, id string, fields domain.Document) error
	DocumentDeleted(ctx context.Context, aggregate, id string) error
}

// CreatedData is the payload of a <aggregate>.created event.
type CreatedData struct {
	ID       string          `json:"id"`
	Document domain.Document `json:"document"`
}

// UpdatedData is the payload of a <aggregate>.updated event. Fields holds
// only the submitted changes.
type UpdatedData struct {
	ID     string          `json:"id"`
	Fields domain.Document `json:"fields"`
}

// DeletedData is the payload of a <aggregate>.deleted event.
type DeletedData struct {
	ID string `json:"id"`
}

// eventPublisher is the part of pkgkafka.Producer used here.
type eventPublisher interface {
	Publish(ctx context.Context, event *pkgkafka.Event) error
}

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = Discard{}
)

// Producer publishes document events to Kafka.
type Producer struct {
	kafka  eventPublisher
	logger *slog.Logger
}

// NewProducer creates a Producer on top of a shared Kafka producer.
func NewProducer(kafka eventPublisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func (p *Producer) DocumentCreated(ctx context.Context, aggregate string, doc domain.Document) error {
	id := doc.ID()
	return p.publish(ctx, aggregate, ActionCreated, id, CreatedData{ID: id, Document: doc})
}

func (p *Producer) DocumentUpdated(ctx context.Context, aggregate, id string, fields domain.Document) error {
	return p.publish(ctx, aggregate, ActionUpdated, id, UpdatedData{ID: id, Fields: fields})
}

func (p *Producer) DocumentDeleted(ctx context.Context, aggregate, id string) error {
	return p.publish(ctx, aggregate, ActionDeleted, id, DeletedData{ID: id})
}

func (p *Producer) publish(ctx context.Context, aggregate, action, id string, data any) error {
	evt, err := pkgkafka.NewEvent(aggregate, action, id, data,
		pkgkafka.WithSource(SourceJournalist),
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create %s.%s event: %w", aggregate, action, err)
	}

	if err := p.kafka.Publish(ctx, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.Type, err)
	}

	p.logger.DebugContext(ctx, "published "+evt.Type+" event",
		slog.String("aggregate_id", id),
	)
	return nil
}

// Discard is a Publisher that drops every event. It is used when Kafka is
// disabled.
type Discard struct{}

func (Discard) DocumentCreated(context.Context, string, domain.Document) error         { return nil }
func (Discard) DocumentUpdated(context.Context, string, string, domain.Document) error { return nil }
func (Discard) DocumentDeleted(context.Context, string, string) error                  { return nil }
