package payment

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/enums"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/inbox"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type captureEmitter struct {
	emissions []events.Envelope
}

func (c *captureEmitter) Emit(tx *gorm.DB, aggregateType, aggregateID string, env events.Envelope) error {
	c.emissions = append(c.emissions, env)
	return nil
}

type fakeProviderClient struct {
	resp     SubmitResponse
	err      error
	requests []SubmitRequest
}

func (f *fakeProviderClient) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return SubmitResponse{}, f.err
	}
	return f.resp, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func setupPaymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  checkout_id TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  status TEXT NOT NULL,
  fail_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	attempts := `
CREATE TABLE IF NOT EXISTS payment_attempts (
  id TEXT PRIMARY KEY,
  payment_id TEXT NOT NULL,
  attempt_no INTEGER NOT NULL,
  provider TEXT NOT NULL,
  provider_payment_id TEXT UNIQUE,
  status TEXT NOT NULL,
  fail_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (payment_id, attempt_no)
);`
	retries := `
CREATE TABLE IF NOT EXISTS payment_retry_requests (
  id TEXT PRIMARY KEY,
  payment_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  created_at DATETIME
);`
	inboxDDL := `
CREATE TABLE IF NOT EXISTS inbox_processed (
  consumer TEXT NOT NULL,
  message_id TEXT NOT NULL,
  processed_at DATETIME,
  PRIMARY KEY (consumer, message_id)
);`
	require.NoError(t, db.Exec(payments).Error)
	require.NoError(t, db.Exec(attempts).Error)
	require.NoError(t, db.Exec(retries).Error)
	require.NoError(t, db.Exec(inboxDDL).Error)
	return db
}

func paymentRequestedEnvelope(t *testing.T, checkoutID, orderID uuid.UUID, currency string) events.Envelope {
	t.Helper()

	env, err := events.New(uuid.New(), events.TypePaymentRequested, events.ProducerCheckoutService, orderID.String(), events.PaymentRequested{
		CheckoutID: checkoutID.String(),
		OrderID:    orderID.String(),
		CustomerID: "cust-1",
		Amount:     decimal.NewFromInt(50),
		Currency:   currency,
	})
	require.NoError(t, err)
	return env
}

func newInlineHandler(db *gorm.DB, emitter *captureEmitter) *Handler {
	return NewHandler(NewRepository(db), gormTx{db}, emitter, inbox.NewGuard("payment-service"), nil, false, testLogger())
}

func TestHandlerSettlesInlineSuccess(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	h := newInlineHandler(db, emitter)

	checkoutID, orderID := uuid.New(), uuid.New()
	cause := paymentRequestedEnvelope(t, checkoutID, orderID, "USD")
	require.NoError(t, h.Handle(context.Background(), cause))

	repo := NewRepository(db)
	payment, err := repo.FindByCheckoutID(context.Background(), checkoutID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusSucceeded, payment.Status)

	attempts, err := repo.ListAttempts(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, 1, attempts[0].AttemptNo)
	require.Equal(t, enums.PaymentProviderMock, attempts[0].Provider)
	require.Equal(t, enums.PaymentStatusSucceeded, attempts[0].Status)

	require.Len(t, emitter.emissions, 1)
	outcome := emitter.emissions[0]
	require.Equal(t, events.TypePaymentCompleted, outcome.EventType)
	require.Equal(t, cause.CorrelationID, outcome.CorrelationID)
	require.NotNil(t, outcome.CausationID)
	require.Equal(t, cause.MessageID, *outcome.CausationID)
}

func TestHandlerSettlesInlineForcedFail(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	h := newInlineHandler(db, emitter)

	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "FAIL")))

	repo := NewRepository(db)
	payment, err := repo.FindByCheckoutID(context.Background(), checkoutID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusFailed, payment.Status)
	require.Equal(t, forcedFailReason, payment.FailReason)

	require.Len(t, emitter.emissions, 1)
	require.Equal(t, events.TypePaymentFailed, emitter.emissions[0].EventType)

	var payload events.PaymentFailed
	require.NoError(t, emitter.emissions[0].DecodePayload(&payload))
	require.Equal(t, forcedFailReason, payload.Reason)
}

func TestHandlerSkipsRedeliveredMessage(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	h := newInlineHandler(db, emitter)

	env := paymentRequestedEnvelope(t, uuid.New(), uuid.New(), "USD")
	require.NoError(t, h.Handle(context.Background(), env))
	require.NoError(t, h.Handle(context.Background(), env))

	require.Len(t, emitter.emissions, 1)
}

func TestHandlerReopensSettledPaymentOnFreshRequest(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	h := newInlineHandler(db, emitter)

	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	// A manual retry arrives as a PaymentRequested with a fresh message id.
	// The settled payment re-enters the saga: a new attempt opens and a
	// second outcome is emitted.
	retryCause := paymentRequestedEnvelope(t, checkoutID, orderID, "USD")
	require.NoError(t, h.Handle(context.Background(), retryCause))

	repo := NewRepository(db)
	payment, err := repo.FindByCheckoutID(context.Background(), checkoutID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusSucceeded, payment.Status)

	attempts, err := repo.ListAttempts(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Equal(t, 1, attempts[0].AttemptNo)
	require.Equal(t, 2, attempts[1].AttemptNo)

	require.Len(t, emitter.emissions, 2)
	second := emitter.emissions[1]
	require.Equal(t, events.TypePaymentCompleted, second.EventType)
	require.NotNil(t, second.CausationID)
	require.Equal(t, retryCause.MessageID, *second.CausationID)
}

// staleMaxRepo returns a stale attempt count on its first read so the insert
// collides with the taken slot and the handler has to recompute.
type staleMaxRepo struct {
	Repository
	calls *int
}

func (r *staleMaxRepo) WithTx(tx *gorm.DB) Repository {
	return &staleMaxRepo{Repository: r.Repository.WithTx(tx), calls: r.calls}
}

func (r *staleMaxRepo) MaxAttemptNo(ctx context.Context, paymentID uuid.UUID) (int, error) {
	*r.calls++
	if *r.calls == 1 {
		return 0, nil
	}
	return r.Repository.MaxAttemptNo(ctx, paymentID)
}

func TestHandlerRecomputesAttemptSlotOnConflict(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	h := newInlineHandler(db, emitter)

	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	calls := 0
	stale := &staleMaxRepo{Repository: NewRepository(db), calls: &calls}
	h2 := NewHandler(stale, gormTx{db}, emitter, inbox.NewGuard("payment-service"), nil, false, testLogger())
	require.NoError(t, h2.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	repo := NewRepository(db)
	payment, err := repo.FindByCheckoutID(context.Background(), checkoutID)
	require.NoError(t, err)

	// Attempt numbers stay strictly increasing with no gap even though the
	// first slot computation collided.
	attempts, err := repo.ListAttempts(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Equal(t, 1, attempts[0].AttemptNo)
	require.Equal(t, 2, attempts[1].AttemptNo)
	require.Equal(t, 2, calls)
}

func TestHandlerSubmitsToProviderWhenEnabled(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	client := &fakeProviderClient{resp: SubmitResponse{ProviderPaymentID: "prov-123", Status: "ACCEPTED"}}
	h := NewHandler(NewRepository(db), gormTx{db}, emitter, inbox.NewGuard("payment-service"), client, true, testLogger())

	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	repo := NewRepository(db)
	payment, err := repo.FindByCheckoutID(context.Background(), checkoutID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, payment.Status)

	attempts, err := repo.ListAttempts(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, enums.PaymentProviderExternal, attempts[0].Provider)
	require.Equal(t, enums.PaymentStatusPending, attempts[0].Status)
	require.NotNil(t, attempts[0].ProviderPaymentID)
	require.Equal(t, "prov-123", *attempts[0].ProviderPaymentID)

	require.Empty(t, emitter.emissions)
	require.Len(t, client.requests, 1)
	require.Equal(t, payment.ID.String(), client.requests[0].PaymentID)
	require.Equal(t, "USD", client.requests[0].Currency)
}

func TestHandlerKeepsAttemptPendingOnSubmitFailure(t *testing.T) {
	db := setupPaymentTestDB(t)
	emitter := &captureEmitter{}
	client := &fakeProviderClient{err: errors.New("gateway unreachable")}
	h := NewHandler(NewRepository(db), gormTx{db}, emitter, inbox.NewGuard("payment-service"), client, true, testLogger())

	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	repo := NewRepository(db)
	payment, err := repo.FindByCheckoutID(context.Background(), checkoutID)
	require.NoError(t, err)

	attempts, err := repo.ListAttempts(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, enums.PaymentStatusPending, attempts[0].Status)
	require.Nil(t, attempts[0].ProviderPaymentID)
}
