package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/enums"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/inbox"
)

// seedProviderPayment drives a PaymentRequested event through the handler with
// the provider enabled, leaving a PENDING payment and attempt awaiting a
// webhook.
func seedProviderPayment(t *testing.T, db *gorm.DB) (orderID uuid.UUID, providerPaymentID string) {
	t.Helper()

	providerPaymentID = uuid.NewString()
	client := &fakeProviderClient{resp: SubmitResponse{ProviderPaymentID: providerPaymentID, Status: "ACCEPTED"}}
	h := NewHandler(NewRepository(db), gormTx{db}, &captureEmitter{}, inbox.NewGuard("payment-service"), client, true, testLogger())

	orderID = uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, uuid.New(), orderID, "USD")))
	return orderID, providerPaymentID
}

func TestWebhookAppliesSuccessOutcome(t *testing.T) {
	db := setupPaymentTestDB(t)
	orderID, providerPaymentID := seedProviderPayment(t, db)

	emitter := &captureEmitter{}
	svc := NewWebhookService(NewRepository(db), gormTx{db}, emitter, testLogger())

	correlationID := uuid.New()
	ctx := correlation.WithID(context.Background(), correlationID)
	require.NoError(t, svc.Apply(ctx, WebhookInput{ProviderPaymentID: providerPaymentID, Status: "SUCCEEDED"}))

	repo := NewRepository(db)
	payment, err := repo.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusSucceeded, payment.Status)

	attempts, err := repo.ListAttempts(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, enums.PaymentStatusSucceeded, attempts[0].Status)

	require.Len(t, emitter.emissions, 1)
	outcome := emitter.emissions[0]
	require.Equal(t, events.TypePaymentCompleted, outcome.EventType)
	require.Equal(t, correlationID, outcome.CorrelationID)
}

func TestWebhookAppliesFailureOutcome(t *testing.T) {
	db := setupPaymentTestDB(t)
	orderID, providerPaymentID := seedProviderPayment(t, db)

	emitter := &captureEmitter{}
	svc := NewWebhookService(NewRepository(db), gormTx{db}, emitter, testLogger())

	require.NoError(t, svc.Apply(context.Background(), WebhookInput{
		ProviderPaymentID: providerPaymentID,
		Status:            "FAILED",
		Reason:            "card declined",
	}))

	repo := NewRepository(db)
	payment, err := repo.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusFailed, payment.Status)
	require.Equal(t, "card declined", payment.FailReason)

	require.Len(t, emitter.emissions, 1)
	require.Equal(t, events.TypePaymentFailed, emitter.emissions[0].EventType)

	var payload events.PaymentFailed
	require.NoError(t, emitter.emissions[0].DecodePayload(&payload))
	require.Equal(t, "card declined", payload.Reason)
}

func TestWebhookDuplicateIsNoOp(t *testing.T) {
	db := setupPaymentTestDB(t)
	_, providerPaymentID := seedProviderPayment(t, db)

	emitter := &captureEmitter{}
	svc := NewWebhookService(NewRepository(db), gormTx{db}, emitter, testLogger())

	input := WebhookInput{ProviderPaymentID: providerPaymentID, Status: "SUCCEEDED"}
	require.NoError(t, svc.Apply(context.Background(), input))
	require.NoError(t, svc.Apply(context.Background(), input))

	require.Len(t, emitter.emissions, 1)
}

func TestWebhookUnknownProviderPaymentIsNoOp(t *testing.T) {
	db := setupPaymentTestDB(t)

	emitter := &captureEmitter{}
	svc := NewWebhookService(NewRepository(db), gormTx{db}, emitter, testLogger())

	require.NoError(t, svc.Apply(context.Background(), WebhookInput{ProviderPaymentID: uuid.NewString(), Status: "SUCCEEDED"}))
	require.Empty(t, emitter.emissions)
}

func TestWebhookIgnoresNonTerminalStatus(t *testing.T) {
	db := setupPaymentTestDB(t)
	orderID, providerPaymentID := seedProviderPayment(t, db)

	emitter := &captureEmitter{}
	svc := NewWebhookService(NewRepository(db), gormTx{db}, emitter, testLogger())

	require.NoError(t, svc.Apply(context.Background(), WebhookInput{ProviderPaymentID: providerPaymentID, Status: "PENDING"}))
	require.NoError(t, svc.Apply(context.Background(), WebhookInput{ProviderPaymentID: providerPaymentID, Status: "SOMETHING_ELSE"}))

	repo := NewRepository(db)
	payment, err := repo.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, payment.Status)
	require.Empty(t, emitter.emissions)
}

func TestWebhookLeavesSettledPaymentAlone(t *testing.T) {
	db := setupPaymentTestDB(t)
	orderID, providerPaymentID := seedProviderPayment(t, db)

	repo := NewRepository(db)
	payment, err := repo.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)

	// Another attempt settled the payment while this webhook was in flight.
	require.NoError(t, repo.UpdateStatus(context.Background(), payment.ID, enums.PaymentStatusSucceeded.String(), ""))

	emitter := &captureEmitter{}
	svc := NewWebhookService(repo, gormTx{db}, emitter, testLogger())
	require.NoError(t, svc.Apply(context.Background(), WebhookInput{ProviderPaymentID: providerPaymentID, Status: "FAILED", Reason: "late"}))

	stored, err := repo.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusSucceeded, stored.Status)
	require.Empty(t, emitter.emissions)
}
