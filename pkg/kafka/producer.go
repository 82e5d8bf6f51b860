// Package kafka wraps franz-go with the producer, consumer and topic
// management pieces the services share.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

// Producer publishes envelopes to Kafka, keyed so records for one aggregate
// land on one partition in order.
type Producer struct {
	client *kgo.Client
}

// NewProducer builds a producing client with all-ISR acks and bounded
// in-flight requests, which preserves per-key ordering under broker retries.
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.BrokerList()...),
		kgo.ClientID(cfg.ClientID),
		kgo.MaxProduceRequestsInflightPerBroker(1),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(5),
		kgo.RetryBackoffFn(func(n int) time.Duration {
			return time.Duration(n*100) * time.Millisecond
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client}, nil
}

// Publish encodes env and produces it to topic synchronously.
func (p *Producer) Publish(ctx context.Context, topic string, env events.Envelope) error {
	value, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(env.Key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: events.HeaderCorrelationID, Value: []byte(env.CorrelationID.String())},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce: %w", err)
	}
	return nil
}

// PublishRecord produces a prebuilt record, used by the DLQ path which needs
// extra headers.
func (p *Producer) PublishRecord(ctx context.Context, record *kgo.Record) error {
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	_ = p.client.Flush(context.Background())
	p.client.Close()
}
