package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/goals-ev-service/internal/models"
	"github.com/cypherlabdev/goals-ev-service/internal/service"
)

// errUnprocessable marks messages that can never succeed; they are committed and skipped
var errUnprocessable = errors.New("unprocessable message")

// MessageRecorder observes consumed and produced messages
type MessageRecorder interface {
	RecordKafkaMessage(direction, status string)
}

// kafkaReader interface for Kafka reader abstraction
type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// KafkaConsumer consumes fixture snapshots from Kafka and evaluates them
type KafkaConsumer struct {
	reader    kafkaReader
	evaluator service.FixtureEvaluator
	recorder  MessageRecorder
	logger    zerolog.Logger
}

// KafkaConsumerConfig holds Kafka consumer configuration
type KafkaConsumerConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "fixture_snapshots"
	GroupID string   // e.g., "goals-ev"
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(
	config KafkaConsumerConfig,
	evaluator service.FixtureEvaluator,
	recorder MessageRecorder,
	logger zerolog.Logger,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.GroupID,
		MinBytes:       1e3,  // 1KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1000, // Commit every 1 second
	})

	return newKafkaConsumer(reader, evaluator, recorder, logger)
}

func newKafkaConsumer(reader kafkaReader, evaluator service.FixtureEvaluator, recorder MessageRecorder, logger zerolog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:    reader,
		evaluator: evaluator,
		recorder:  recorder,
		logger:    logger.With().Str("component", "kafka_consumer").Logger(),
	}
}

// Start consumes messages until ctx is canceled. Messages are processed one at a time.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("started consuming from Kafka")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("stopping Kafka consumer")
			return nil

		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return nil
				}
				c.logger.Error().Err(err).Msg("failed to fetch message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				if !errors.Is(err, errUnprocessable) {
					c.record("failed")
					c.logger.Error().
						Err(err).
						Int64("offset", msg.Offset).
						Str("key", string(msg.Key)).
						Msg("failed to process message")
					// Don't commit if processing failed
					continue
				}
				c.record("skipped")
				c.logger.Warn().
					Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("skipping unprocessable message")
			} else {
				c.record("processed")
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to commit message")
			}
		}
	}
}

// processMessage evaluates the snapshots of a single Kafka message
func (c *KafkaConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var kafkaMsg models.KafkaFixtureMessage
	if err := json.Unmarshal(msg.Value, &kafkaMsg); err != nil {
		return fmt.Errorf("%w: failed to unmarshal message: %w", errUnprocessable, err)
	}

	if len(kafkaMsg.Fixtures) == 0 {
		c.logger.Debug().Str("batch_id", kafkaMsg.BatchID).Msg("empty fixture batch")
		return nil
	}

	c.logger.Debug().
		Int("fixture_count", len(kafkaMsg.Fixtures)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processing fixture batch")

	evals, err := c.evaluator.EvaluateBatch(ctx, kafkaMsg.Fixtures)
	if errors.Is(err, service.ErrNoValidFixtures) {
		return fmt.Errorf("%w: %w", errUnprocessable, err)
	}
	if err != nil {
		return fmt.Errorf("failed to evaluate fixtures: %w", err)
	}

	c.logger.Info().
		Int("input_count", len(kafkaMsg.Fixtures)).
		Int("output_count", len(evals)).
		Str("batch_id", kafkaMsg.BatchID).
		Msg("processed fixture batch")

	return nil
}

func (c *KafkaConsumer) record(status string) {
	if c.recorder != nil {
		c.recorder.RecordKafkaMessage("consumed", status)
	}
}

// Close closes the Kafka reader
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
