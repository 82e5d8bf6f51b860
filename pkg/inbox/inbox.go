// Package inbox implements the consumer-side idempotency guard. Each
// consumer records the message ids it has applied; a second insert for the
// same id changes nothing, which is how a redelivery is detected.
package inbox

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
)

// Guard marks messages as processed for one named consumer.
type Guard struct {
	consumer string
}

func NewGuard(consumer string) *Guard {
	return &Guard{consumer: consumer}
}

// TryMarkProcessed inserts the processed marker inside the caller's
// transaction and reports already=true when the message was applied before.
// The insert uses ON CONFLICT DO NOTHING so a duplicate does not abort the
// surrounding transaction.
func (g *Guard) TryMarkProcessed(tx *gorm.DB, messageID uuid.UUID) (already bool, err error) {
	row := &models.InboxProcessed{
		Consumer:  g.consumer,
		MessageID: messageID,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

// Consumer returns the guard's consumer name.
func (g *Guard) Consumer() string {
	return g.consumer
}
