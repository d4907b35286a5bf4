package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/dmitrymomot/funnel/pkg/conversion"
)

// MessageWriter is the subset of *kafka.Writer the Kafka sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes every conversion event as JSON to one topic, keyed by
// session id so a session's events stay ordered within a partition.
type Kafka struct {
	name   string
	topic  string
	writer MessageWriter
}

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for b := range strings.SplitSeq(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewKafka builds a Kafka sink. Without brokers or topic the sink is disabled.
func NewKafka(brokers []string, topic string) *Kafka {
	k := &Kafka{name: "kafka", topic: strings.TrimSpace(topic)}
	if len(brokers) == 0 || k.topic == "" {
		return k
	}
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return k
}

// NewKafkaWithWriter builds a Kafka sink on an existing writer.
// The writer must not have a topic set; messages carry it.
func NewKafkaWithWriter(w MessageWriter, topic string) *Kafka {
	return &Kafka{name: "kafka", topic: strings.TrimSpace(topic), writer: w}
}

func (k *Kafka) Name() string { return k.name }

// Enabled implements conversion.Toggle.
func (k *Kafka) Enabled() bool { return k.writer != nil && k.topic != "" }

// Report implements conversion.Sink.
func (k *Kafka) Report(ctx context.Context, ev conversion.Event) error {
	if !k.Enabled() {
		return ErrNotConfigured
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeEvent, err)
	}
	msg := kafka.Message{
		Topic: k.topic,
		Key:   []byte(ev.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "event_type", Value: []byte(ev.Kind)},
			{Key: "environment", Value: []byte(ev.Environment)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishEvent, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
