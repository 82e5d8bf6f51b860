package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

// TopicConfig describes one topic to ensure at startup.
type TopicConfig struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
}

// DefaultTopicConfigs lists every business and DLQ topic the system uses.
func DefaultTopicConfigs(partitions int32) []TopicConfig {
	names := []string{
		events.TopicOrderEvents,
		events.TopicOrderEventsDLQ,
		events.TopicCheckoutEvents,
		events.TopicCheckoutEventsDLQ,
		events.TopicPaymentRequests,
		events.TopicPaymentRequestsDLQ,
		events.TopicPaymentEvents,
		events.TopicPaymentEventsDLQ,
	}
	configs := make([]TopicConfig, 0, len(names))
	for _, name := range names {
		configs = append(configs, TopicConfig{Name: name, Partitions: partitions, ReplicationFactor: 1})
	}
	return configs
}

// TopicManager creates missing topics through the admin API.
type TopicManager struct {
	admin *kadm.Client
}

func NewTopicManager(cfg config.KafkaConfig) (*TopicManager, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.BrokerList()...))
	if err != nil {
		return nil, fmt.Errorf("create kafka admin client: %w", err)
	}
	return &TopicManager{admin: kadm.NewClient(client)}, nil
}

// EnsureTopics creates any of the given topics that do not exist yet.
func (m *TopicManager) EnsureTopics(ctx context.Context, configs []TopicConfig) error {
	existing, err := m.admin.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}

	existingSet := make(map[string]bool)
	for _, t := range existing {
		existingSet[t.Topic] = true
	}

	for _, cfg := range configs {
		if existingSet[cfg.Name] {
			continue
		}
		resp, err := m.admin.CreateTopics(ctx, cfg.Partitions, cfg.ReplicationFactor, nil, cfg.Name)
		if err != nil {
			return fmt.Errorf("create topic %s: %w", cfg.Name, err)
		}
		for _, r := range resp {
			if r.Err != nil {
				return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
			}
		}
	}

	return nil
}

func (m *TopicManager) Close() {
	m.admin.Close()
}

// EnsureDefaultTopics creates all missing business and DLQ topics. Mains call
// this in dev when the ensure-topics flag is on.
func EnsureDefaultTopics(ctx context.Context, cfg config.KafkaConfig) error {
	if !cfg.EnsureTopics {
		return nil
	}
	manager, err := NewTopicManager(cfg)
	if err != nil {
		return err
	}
	defer manager.Close()
	return manager.EnsureTopics(ctx, DefaultTopicConfigs(cfg.Partitions))
}
