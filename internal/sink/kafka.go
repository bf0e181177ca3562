package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/Mantelijo/transfer-ingest/internal/chain"
)

var _ chain.EventSink = (*kafkaSink)(nil)

// NewKafkaSink connects a synchronous producer to brokers. Events are keyed by
// chain and transaction reference so events of one transaction share a
// partition.
func NewKafkaSink(brokers []string, topic string) (*kafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is empty")
	}

	cfg := sarama.NewConfig()
	cfg.ClientID = "transfer-ingest"
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	// Required by SyncProducer
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	slog.Info("initialized kafka sink",
		slog.Any("brokers", brokers),
		slog.String("topic", topic),
	)

	return newKafkaSink(producer, topic), nil
}

func newKafkaSink(producer sarama.SyncProducer, topic string) *kafkaSink {
	return &kafkaSink{
		producer: producer,
		topic:    topic,
	}
}

type kafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

func (k *kafkaSink) Emit(ctx context.Context, event *chain.TransferEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode transfer event: %w", err)
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(string(event.Chain) + ":" + event.TxReference),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("chain"), Value: []byte(event.Chain)},
			{Key: []byte("kind"), Value: []byte(event.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}

	slog.Debug("published transfer event",
		slog.String("chain", string(event.Chain)),
		slog.String("topic", k.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (k *kafkaSink) Close() error {
	return k.producer.Close()
}
