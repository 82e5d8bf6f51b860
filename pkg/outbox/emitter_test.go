package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

func TestEmitStagesEnvelopeAsOutboxRow(t *testing.T) {
	db := setupOutboxTestDB(t)
	emitter := NewEmitter(NewRepository(db))

	env, err := events.New(uuid.New(), events.TypeCheckoutCompleted, events.ProducerCheckoutService, "order-1", events.CheckoutCompleted{
		CheckoutID: uuid.NewString(),
		OrderID:    uuid.NewString(),
		CustomerID: "cust-1",
	})
	require.NoError(t, err)

	require.NoError(t, emitter.Emit(db, events.AggregateCheckout, "checkout-1", env))

	var row models.OutboxEvent
	require.NoError(t, db.Where("id = ?", env.MessageID).First(&row).Error)
	require.Equal(t, events.TypeCheckoutCompleted, row.EventType)
	require.Equal(t, events.AggregateCheckout, row.AggregateType)
	require.Nil(t, row.PublishedAt)

	decoded, err := events.Decode(row.Payload)
	require.NoError(t, err)
	require.Equal(t, env.MessageID, decoded.MessageID)
	require.Equal(t, env.CorrelationID, decoded.CorrelationID)
}
