package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

const ideaEventType = "TRADING_IDEA"

// IdeaEvent is the JSON payload published for each trading idea
type IdeaEvent struct {
	EventType string              `json:"event_type"`
	Source    string              `json:"source"`
	Timestamp string              `json:"timestamp"`
	Data      *contracts.Analysis `json:"data"`
	Text      string              `json:"text"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes ideas to a topic keyed by ticker, so every idea for
// one ticker lands on the same partition
type KafkaSink struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewKafkaSink creates a synchronous producer for topic
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Gzip,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaSink{writer: writer, topic: topic, now: time.Now}, nil
}

// Publish sends one idea event
func (k *KafkaSink) Publish(ctx context.Context, a *contracts.Analysis, text string) error {
	event := IdeaEvent{
		EventType: ideaEventType,
		Source:    "alpha-engine",
		Timestamp: k.now().UTC().Format(time.RFC3339),
		Data:      a,
		Text:      text,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal idea: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(a.Ticker),
		Value: value,
		Time:  k.now(),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish idea to %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (k *KafkaSink) Close() error {
	if k.writer != nil {
		return k.writer.Close()
	}
	return nil
}
