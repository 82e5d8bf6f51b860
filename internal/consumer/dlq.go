package consumer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rsmaster/o2c-backend/pkg/events"
)

type recordPublisher interface {
	PublishRecord(ctx context.Context, record *kgo.Record) error
}

// DLQPublisher copies an unprocessable record to its topic's dead letter
// queue, preserving key and value and adding origin headers.
type DLQPublisher struct {
	producer recordPublisher
}

func NewDLQPublisher(producer recordPublisher) *DLQPublisher {
	return &DLQPublisher{producer: producer}
}

// Publish writes record to the paired DLQ topic. The original headers are
// kept so the correlation id survives the hop.
func (d *DLQPublisher) Publish(ctx context.Context, record *kgo.Record, cause error) error {
	headers := make([]kgo.RecordHeader, 0, len(record.Headers)+4)
	headers = append(headers, record.Headers...)
	headers = append(headers,
		kgo.RecordHeader{Key: events.HeaderOriginalTopic, Value: []byte(record.Topic)},
		kgo.RecordHeader{Key: events.HeaderOriginalPartition, Value: []byte(strconv.FormatInt(int64(record.Partition), 10))},
		kgo.RecordHeader{Key: events.HeaderOriginalOffset, Value: []byte(strconv.FormatInt(record.Offset, 10))},
		kgo.RecordHeader{Key: events.HeaderErrorClass, Value: []byte(errorClass(cause))},
	)

	dead := &kgo.Record{
		Topic:   events.DLQTopicFor(record.Topic),
		Key:     record.Key,
		Value:   record.Value,
		Headers: headers,
	}
	return d.producer.PublishRecord(ctx, dead)
}

func errorClass(err error) string {
	if err == nil {
		return "unknown"
	}
	return fmt.Sprintf("%T", err)
}
