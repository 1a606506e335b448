package indexer

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/kafka"
)

// IndexCompleteEvent announces a finished build to downstream consumers
// such as a search service that reloads its index.
type IndexCompleteEvent struct {
	BuildID     string     `json:"build_id"`
	Documents   int        `json:"documents"`
	Terms       int        `json:"terms"`
	Snapshot    string     `json:"snapshot,omitempty"`
	Sync        SyncReport `json:"sync"`
	CompletedAt time.Time  `json:"completed_at"`
}

// IndexCompleteType is the event-type header of IndexCompleteEvent.
const IndexCompleteType = "index.complete"

type Notifier interface {
	IndexComplete(ctx context.Context, event IndexCompleteEvent) error
}

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// KafkaNotifier publishes IndexCompleteEvent keyed by build id.
type KafkaNotifier struct {
	producer EventPublisher
}

func NewKafkaNotifier(p EventPublisher) *KafkaNotifier {
	return &KafkaNotifier{producer: p}
}

func (n *KafkaNotifier) IndexComplete(ctx context.Context, event IndexCompleteEvent) error {
	return n.producer.Publish(ctx, kafka.Event{
		Type:  IndexCompleteType,
		Key:   event.BuildID,
		Value: event,
	})
}
