// Package publish sends one event per aligned item to Kafka.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/huangsam/sedwarp/internal/logger"
	"github.com/huangsam/sedwarp/schema"
	"github.com/segmentio/kafka-go"
)

// AlignmentEvent is the JSON payload published for one item.
type AlignmentEvent struct {
	RunID          string    `json:"run_id"`
	Core           string    `json:"core"`
	Variable       string    `json:"variable"`
	DataFile       string    `json:"data_file"`
	Reference      string    `json:"reference"`
	SimpleDistance float64   `json:"simple_distance"`
	BestDistance   float64   `json:"best_distance"`
	BestTimes      []float64 `json:"best_times"`
	TargetTime     float64   `json:"target_time"`
	PathLength     int       `json:"path_length"`
	Cached         bool      `json:"cached"`
	ComputedAt     time.Time `json:"computed_at"`
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes alignment events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

var _ contract.Publisher = &KafkaPublisher{} // Compile-time check

// NewKafkaPublisher creates a publisher for topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("a kafka topic is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, topic), nil
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	log := logger.Named("kafka").With().Str("topic", topic).Logger()
	return &KafkaPublisher{writer: w, topic: topic, log: &log}
}

// NewEvent builds the event payload for result.
func NewEvent(runID string, result schema.AlignmentResult) AlignmentEvent {
	return AlignmentEvent{
		RunID:          runID,
		Core:           result.Core,
		Variable:       result.Variable,
		DataFile:       result.DataFile,
		Reference:      result.Reference,
		SimpleDistance: result.SimpleDistance,
		BestDistance:   result.BestDistance,
		BestTimes:      result.BestTimes,
		TargetTime:     result.TargetTime,
		PathLength:     len(result.Path),
		Cached:         result.Cached,
		ComputedAt:     result.ComputedAt,
	}
}

// eventKey keeps every event of one core/variable on the same partition.
func eventKey(result schema.AlignmentResult) string {
	return result.Core + "/" + result.Variable
}

// buildMessage serialises the event for result.
func buildMessage(runID string, result schema.AlignmentResult) (kafka.Message, error) {
	value, err := json.Marshal(NewEvent(runID, result))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling alignment event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(eventKey(result)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}

// Publish writes one event synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, runID string, result schema.AlignmentResult) error {
	msg, err := buildMessage(runID, result)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error().Err(err).Str("key", string(msg.Key)).Msg("Failed to publish alignment event")
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	p.log.Debug().Str("key", string(msg.Key)).Int("value_size", len(msg.Value)).Msg("Published alignment event")
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards every event. It is used when no brokers are configured.
type NopPublisher struct{}

var _ contract.Publisher = NopPublisher{} // Compile-time check

// Publish does nothing.
func (NopPublisher) Publish(context.Context, string, schema.AlignmentResult) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// New returns a Kafka publisher when brokers are configured and a NopPublisher otherwise.
func New(brokers []string, topic string) (contract.Publisher, error) {
	if len(brokers) == 0 {
		return NopPublisher{}, nil
	}
	p, err := NewKafkaPublisher(brokers, topic)
	if err != nil {
		return nil, err
	}
	return p, nil
}
