package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
)

// KafkaProducer publishes evaluations to Kafka
type KafkaProducer struct {
	writer   kafkaWriter
	recorder MessageRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// kafkaWriter interface for Kafka writer abstraction
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaProducer creates a new Kafka producer
func NewKafkaProducer(
	brokers []string,
	topic string,
	recorder MessageRecorder,
	logger zerolog.Logger,
) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: time.Second,
		Compression:  kafka.Snappy,
	}

	return newKafkaProducer(writer, recorder, logger)
}

func newKafkaProducer(writer kafkaWriter, recorder MessageRecorder, logger zerolog.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer:   writer,
		recorder: recorder,
		logger:   logger.With().Str("component", "kafka_producer").Logger(),
		now:      time.Now,
	}
}

// Publish writes a batch of evaluations as one message
func (p *KafkaProducer) Publish(ctx context.Context, evals []*models.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}

	message := models.KafkaEvaluationMessage{
		Evaluations: make([]models.Evaluation, 0, len(evals)),
		Timestamp:   p.now().UTC(),
		BatchID:     uuid.New().String(),
	}
	opportunities := 0
	for _, eval := range evals {
		message.Evaluations = append(message.Evaluations, *eval)
		if eval.Comparison != nil && eval.Comparison.HasOpportunity {
			opportunities++
		}
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(message.BatchID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "batch_id", Value: []byte(message.BatchID)},
			{Key: "timestamp", Value: []byte(message.Timestamp.Format(time.RFC3339))},
			{Key: "count", Value: []byte(strconv.Itoa(len(evals)))},
			{Key: "opportunities", Value: []byte(strconv.Itoa(opportunities))},
		},
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		p.record("failed")
		return fmt.Errorf("failed to write to Kafka: %w", err)
	}
	p.record("published")

	p.logger.Info().
		Int("count", len(evals)).
		Int("opportunities", opportunities).
		Str("batch_id", message.BatchID).
		Msg("published evaluation batch")

	return nil
}

func (p *KafkaProducer) record(status string) {
	if p.recorder != nil {
		p.recorder.RecordKafkaMessage("produced", status)
	}
}

// Close closes the Kafka writer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
