package payment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/db"
	"github.com/rsmaster/o2c-backend/pkg/db/models"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

// RetryOutcome tells the caller whether this request triggered a publish or
// hit the idempotency fence.
type RetryOutcome string

const (
	RetryAccepted        RetryOutcome = "ACCEPTED"
	RetryAlreadyAccepted RetryOutcome = "ALREADY_ACCEPTED"
)

// RetryInput is the manual retry request body.
type RetryInput struct {
	OrderID        uuid.UUID
	RetryRequestID uuid.UUID
}

type kafkaPublisher interface {
	Publish(ctx context.Context, topic string, env events.Envelope) error
}

// RetryService republishes PaymentRequested for a stuck payment. The retry
// request id is the idempotency fence: the first caller publishes, everyone
// else gets ALREADY_ACCEPTED. The publish goes straight to Kafka rather than
// the outbox, so the new request has the retry id as both message id and
// causation id.
type RetryService struct {
	repo     Repository
	producer kafkaPublisher
}

func NewRetryService(repo Repository, producer kafkaPublisher) *RetryService {
	return &RetryService{repo: repo, producer: producer}
}

// Request records the retry and republishes the payment request.
func (s *RetryService) Request(ctx context.Context, input RetryInput) (RetryOutcome, error) {
	if input.OrderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.RetryRequestID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "retry request id required")
	}

	payment, err := s.repo.FindByOrderID(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "no payment for order")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}

	fence := &models.PaymentRetryRequest{
		ID:        input.RetryRequestID,
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
	}
	if err := s.repo.CreateRetryRequest(ctx, fence); err != nil {
		if db.IsUniqueViolation(err, "") {
			return RetryAlreadyAccepted, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record retry request")
	}

	correlationID, ok := correlation.FromContext(ctx)
	if !ok {
		correlationID = uuid.New()
	}

	env, err := events.New(correlationID, events.TypePaymentRequested, events.ProducerPaymentService, payment.OrderID.String(), events.PaymentRequested{
		CheckoutID: payment.CheckoutID.String(),
		OrderID:    payment.OrderID.String(),
		CustomerID: payment.CustomerID,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment requested event")
	}
	// The retry id doubles as message id and causation id, tying every
	// downstream effect back to the caller's request.
	env.MessageID = input.RetryRequestID
	causation := input.RetryRequestID
	env.CausationID = &causation

	if err := s.producer.Publish(ctx, events.TopicPaymentRequests, env); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish payment requested")
	}
	return RetryAccepted, nil
}
