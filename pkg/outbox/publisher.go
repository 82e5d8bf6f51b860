package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/db/models"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/metrics"
	"github.com/rsmaster/o2c-backend/pkg/retry"
)

// KafkaPublisher is the producing surface the relay needs.
type KafkaPublisher interface {
	Publish(ctx context.Context, topic string, env events.Envelope) error
}

// Publisher is the outbox relay: it polls for pending rows, claims a batch
// under a lease and publishes each row to its topic. Delivery is at least
// once; consumers dedupe on message id.
type Publisher struct {
	cfg      config.OutboxConfig
	owner    string
	repo     *Repository
	producer KafkaPublisher
	log      *logger.Logger
}

func NewPublisher(cfg config.OutboxConfig, owner string, repo *Repository, producer KafkaPublisher, log *logger.Logger) *Publisher {
	return &Publisher{cfg: cfg, owner: owner, repo: repo, producer: producer, log: log}
}

// Run polls until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	startCtx := p.log.WithFields(ctx, map[string]any{
		"poll_interval": p.cfg.PollInterval.String(),
		"batch_size":    p.cfg.BatchSize,
	})
	p.log.Info(startCtx, "outbox publisher started")

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Drain(ctx); err != nil {
				p.log.Error(ctx, "outbox drain failed", err)
			}
		}
	}
}

// Drain claims and publishes one batch. Exposed separately so tests can step
// the relay without the ticker.
func (p *Publisher) Drain(ctx context.Context) error {
	claimed, err := p.repo.Claim(ctx, p.cfg.BatchSize, p.owner, p.cfg.ClaimLease)
	if err != nil {
		return fmt.Errorf("claim outbox rows: %w", err)
	}
	if claimed == 0 {
		return nil
	}

	rows, err := p.repo.FetchClaimed(ctx, p.owner)
	if err != nil {
		return fmt.Errorf("fetch claimed rows: %w", err)
	}

	for _, row := range rows {
		if err := p.publishRow(ctx, row); err != nil {
			metrics.OutboxPublishFailures.Inc()
			rowCtx := p.log.WithFields(ctx, map[string]any{
				"outbox_id":  row.ID.String(),
				"event_type": row.EventType,
			})
			p.log.Error(rowCtx, "outbox publish failed", err)
			if relErr := p.repo.Release(ctx, row.ID); relErr != nil {
				p.log.Error(rowCtx, "outbox release failed", relErr)
			}
			continue
		}

		changed, err := p.repo.MarkPublished(ctx, row.ID)
		if err != nil {
			return fmt.Errorf("mark published: %w", err)
		}
		if changed {
			metrics.OutboxPublished.WithLabelValues(row.EventType).Inc()
		}
	}

	return nil
}

func (p *Publisher) publishRow(ctx context.Context, row models.OutboxEvent) error {
	env, err := events.Decode(row.Payload)
	if err != nil {
		return fmt.Errorf("decode outbox payload: %w", err)
	}

	topic, ok := events.TopicForEventType(env.EventType)
	if !ok {
		return fmt.Errorf("no topic for event type %q", env.EventType)
	}

	policy := retry.Policy{
		MaxAttempts: p.cfg.PublishRetries,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      0.25,
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
	defer cancel()

	return retry.Do(publishCtx, policy, func(ctx context.Context) error {
		return p.producer.Publish(ctx, topic, env)
	})
}
