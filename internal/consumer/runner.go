// Package consumer runs the Kafka poll loop shared by the services. Records
// on one partition are handled in order; partitions run concurrently. A
// record that keeps failing goes to the dead letter topic and its offset is
// committed either way, so one poison message never stalls a partition.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/metrics"
	"github.com/rsmaster/o2c-backend/pkg/retry"
)

// Handler applies one envelope. Implementations are responsible for their own
// idempotency; the runner will deliver duplicates.
type Handler interface {
	Handle(ctx context.Context, env events.Envelope) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env events.Envelope) error

func (f HandlerFunc) Handle(ctx context.Context, env events.Envelope) error {
	return f(ctx, env)
}

// Runner polls a consumer group client and dispatches records by topic.
type Runner struct {
	name       string
	client     *kgo.Client
	dlq        *DLQPublisher
	handlers   map[string]Handler
	processing retry.Policy
	stream     retry.Policy
	log        *logger.Logger
}

func NewRunner(name string, client *kgo.Client, dlq *DLQPublisher, cfg config.ConsumerConfig, log *logger.Logger) *Runner {
	return &Runner{
		name:   name,
		client: client,
		dlq:    dlq,
		handlers: make(map[string]Handler),
		processing: retry.Policy{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   cfg.BaseDelay,
			MaxDelay:    cfg.MaxDelay,
			Jitter:      0.25,
		},
		stream: retry.Policy{
			MaxAttempts: 0,
			BaseDelay:   cfg.BaseDelay,
			MaxDelay:    cfg.StreamMaxDelay,
			Jitter:      0.25,
		},
		log: log,
	}
}

// On registers the handler for a topic. Must be called before Run.
func (r *Runner) On(topic string, h Handler) {
	r.handlers[topic] = h
}

// Run polls until ctx is done. Broker and poll errors are retried forever
// with capped backoff; only ctx cancellation stops the loop.
func (r *Runner) Run(ctx context.Context) error {
	ctx = r.log.WithConsumer(ctx, r.name)
	r.log.Info(ctx, "consumer started")

	streamBackoff := backoff.NewExponentialBackOff()
	streamBackoff.InitialInterval = r.stream.BaseDelay
	streamBackoff.MaxInterval = r.stream.MaxDelay

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fetches := r.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if err := r.fetchError(fetches); err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			r.log.Error(ctx, "poll failed, backing off", err)
			sleep := streamBackoff.NextBackOff()
			if sleep == backoff.Stop {
				sleep = r.stream.MaxDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			continue
		}
		streamBackoff.Reset()

		r.processFetches(ctx, fetches)

		if err := r.client.CommitUncommittedOffsets(ctx); err != nil {
			r.log.Error(ctx, "offset commit failed", err)
		}
	}
}

func (r *Runner) fetchError(fetches kgo.Fetches) error {
	for _, fe := range fetches.Errors() {
		if fe.Err != nil {
			return fmt.Errorf("fetch %s[%d]: %w", fe.Topic, fe.Partition, fe.Err)
		}
	}
	return nil
}

// processFetches walks each fetched partition in its own goroutine and each
// record inside a partition sequentially.
func (r *Runner) processFetches(ctx context.Context, fetches kgo.Fetches) {
	done := make(chan struct{})
	var partitions int

	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		partitions++
		go func() {
			defer func() { done <- struct{}{} }()
			for _, record := range p.Records {
				r.processRecord(ctx, record)
			}
		}()
	})

	for i := 0; i < partitions; i++ {
		<-done
	}
}

func (r *Runner) processRecord(ctx context.Context, record *kgo.Record) {
	handler, ok := r.handlers[record.Topic]
	if !ok {
		r.log.Warn(ctx, "no handler registered for topic "+record.Topic)
		return
	}

	env, err := events.Decode(record.Value)
	if err != nil {
		// Malformed records can never succeed; dead letter immediately.
		r.log.Error(ctx, "undecodable record, sending to dlq", err)
		r.deadLetter(ctx, record, err)
		return
	}

	ctx = correlation.WithID(ctx, env.CorrelationID)
	recCtx := r.log.WithCorrelationID(ctx, env.CorrelationID.String())
	recCtx = r.log.WithFields(recCtx, map[string]any{
		"message_id": env.MessageID.String(),
		"event_type": env.EventType,
		"topic":      record.Topic,
	})

	attempt := 0
	err = retry.Do(recCtx, r.processing, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.ConsumerRetries.WithLabelValues(r.name).Inc()
		}
		return handler.Handle(ctx, env)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Shutdown mid-record, not a poison message. The offset is not
			// committed, so the record is redelivered after restart.
			r.log.Warn(recCtx, "record abandoned on shutdown, will be redelivered")
			return
		}
		r.log.Error(recCtx, "handler exhausted retries, sending to dlq", err)
		r.deadLetter(recCtx, record, err)
		return
	}

	metrics.ConsumerProcessed.WithLabelValues(r.name, "applied").Inc()
}

func (r *Runner) deadLetter(ctx context.Context, record *kgo.Record, cause error) {
	dlqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	err := retry.Do(dlqCtx, r.processing, func(ctx context.Context) error {
		return r.dlq.Publish(ctx, record, cause)
	})
	if err != nil {
		// The offset still advances; the record is lost to the DLQ but the
		// failure is visible in logs and metrics.
		r.log.Error(ctx, "dlq publish failed", err)
		return
	}
	metrics.ConsumerProcessed.WithLabelValues(r.name, "dead_lettered").Inc()
}
