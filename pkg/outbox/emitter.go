package outbox

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

// Emitter stages envelopes as outbox rows. It never talks to Kafka; the
// relay publishes staged rows after the surrounding transaction commits.
type Emitter struct {
	repo *Repository
}

func NewEmitter(repo *Repository) *Emitter {
	return &Emitter{repo: repo}
}

// Emit serializes env and inserts it as a pending outbox row in tx. The row
// id is the envelope's message id.
func (e *Emitter) Emit(tx *gorm.DB, aggregateType, aggregateID string, env events.Envelope) error {
	payload, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode outbox envelope: %w", err)
	}
	row := &models.OutboxEvent{
		ID:            env.MessageID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     env.EventType,
		Payload:       payload,
	}
	if err := e.repo.Insert(tx, row); err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}
