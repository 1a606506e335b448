// Package kafka publishes JSON-encoded indexer events with segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/config"
)

// TypeHeader carries Event.Type on every message so consumers can route
// without decoding the body.
const TypeHeader = "event-type"

// Event is one message. Key picks the partition and Value is sent as JSON.
type Event struct {
	Type  string
	Key   string
	Value any
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewProducer writes synchronously to topic and waits for all in-sync
// replicas.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{
		writer: w,
		topic:  topic,
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event.Value)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(event.Key),
		Value:   value,
		Headers: []kafka.Header{{Key: TypeHeader, Value: []byte(event.Type)}},
		Time:    time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish failed", "type", event.Type, "key", event.Key, "error", err)
		return fmt.Errorf("publishing %s to %s: %w", event.Type, p.topic, err)
	}
	p.logger.Debug("event published", "type", event.Type, "key", event.Key, "bytes", len(value))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Ping dials the first reachable broker. It backs the health check.
func Ping(brokers []string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var lastErr error = fmt.Errorf("no brokers configured")
		for _, addr := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", addr)
			if err != nil {
				lastErr = err
				continue
			}
			conn.Close()
			return nil
		}
		return fmt.Errorf("kafka brokers unreachable: %w", lastErr)
	}
}
