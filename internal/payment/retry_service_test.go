package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/inbox"
)

type publishedRecord struct {
	topic string
	env   events.Envelope
}

type fakeKafkaPublisher struct {
	published []publishedRecord
}

func (f *fakeKafkaPublisher) Publish(ctx context.Context, topic string, env events.Envelope) error {
	f.published = append(f.published, publishedRecord{topic: topic, env: env})
	return nil
}

func TestRetryRequestPublishesPaymentRequested(t *testing.T) {
	db := setupPaymentTestDB(t)

	// Seed a payment stuck PENDING: provider enabled but submission failing.
	client := &fakeProviderClient{err: errors.New("gateway unreachable")}
	h := NewHandler(NewRepository(db), gormTx{db}, &captureEmitter{}, inbox.NewGuard("payment-service"), client, true, testLogger())
	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	producer := &fakeKafkaPublisher{}
	svc := NewRetryService(NewRepository(db), producer)

	retryID := uuid.New()
	outcome, err := svc.Request(context.Background(), RetryInput{OrderID: orderID, RetryRequestID: retryID})
	require.NoError(t, err)
	require.Equal(t, RetryAccepted, outcome)

	require.Len(t, producer.published, 1)
	rec := producer.published[0]
	require.Equal(t, events.TopicPaymentRequests, rec.topic)
	require.Equal(t, events.TypePaymentRequested, rec.env.EventType)

	// The retry id doubles as message id and causation id.
	require.Equal(t, retryID, rec.env.MessageID)
	require.NotNil(t, rec.env.CausationID)
	require.Equal(t, retryID, *rec.env.CausationID)

	var payload events.PaymentRequested
	require.NoError(t, rec.env.DecodePayload(&payload))
	require.Equal(t, checkoutID.String(), payload.CheckoutID)
	require.Equal(t, orderID.String(), payload.OrderID)
}

func TestRetryRequestIsIdempotent(t *testing.T) {
	db := setupPaymentTestDB(t)

	client := &fakeProviderClient{err: errors.New("gateway unreachable")}
	h := NewHandler(NewRepository(db), gormTx{db}, &captureEmitter{}, inbox.NewGuard("payment-service"), client, true, testLogger())
	checkoutID, orderID := uuid.New(), uuid.New()
	require.NoError(t, h.Handle(context.Background(), paymentRequestedEnvelope(t, checkoutID, orderID, "USD")))

	producer := &fakeKafkaPublisher{}
	svc := NewRetryService(NewRepository(db), producer)

	retryID := uuid.New()
	outcome, err := svc.Request(context.Background(), RetryInput{OrderID: orderID, RetryRequestID: retryID})
	require.NoError(t, err)
	require.Equal(t, RetryAccepted, outcome)

	outcome, err = svc.Request(context.Background(), RetryInput{OrderID: orderID, RetryRequestID: retryID})
	require.NoError(t, err)
	require.Equal(t, RetryAlreadyAccepted, outcome)

	require.Len(t, producer.published, 1)
}

func TestRetryRequestUnknownOrder(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc := NewRetryService(NewRepository(db), &fakeKafkaPublisher{})

	_, err := svc.Request(context.Background(), RetryInput{OrderID: uuid.New(), RetryRequestID: uuid.New()})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRetryRequestValidatesIDs(t *testing.T) {
	db := setupPaymentTestDB(t)
	svc := NewRetryService(NewRepository(db), &fakeKafkaPublisher{})

	_, err := svc.Request(context.Background(), RetryInput{OrderID: uuid.Nil, RetryRequestID: uuid.New()})
	require.Error(t, err)

	_, err = svc.Request(context.Background(), RetryInput{OrderID: uuid.New(), RetryRequestID: uuid.Nil})
	require.Error(t, err)
}
