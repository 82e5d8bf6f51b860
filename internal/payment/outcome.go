package payment

import (
	"github.com/google/uuid"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
	"github.com/rsmaster/o2c-backend/pkg/enums"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

// buildOutcomeEvent wraps the terminal payment state in PaymentCompleted or
// PaymentFailed. With a cause envelope the event follows it; otherwise a root
// envelope is built from correlationID (the webhook path, where no triggering
// envelope exists).
func buildOutcomeEvent(payment *models.Payment, status enums.PaymentStatus, reason string, cause *events.Envelope, correlationID *uuid.UUID) (events.Envelope, error) {
	var (
		env events.Envelope
		err error
	)

	key := payment.OrderID.String()
	if status == enums.PaymentStatusSucceeded {
		payload := events.PaymentCompleted{
			PaymentID:  payment.ID.String(),
			CheckoutID: payment.CheckoutID.String(),
			OrderID:    payment.OrderID.String(),
			Amount:     payment.Amount,
			Currency:   payment.Currency,
		}
		if cause != nil {
			env, err = events.Follow(*cause, events.TypePaymentCompleted, events.ProducerPaymentService, key, payload)
		} else {
			env, err = events.New(derefOrNew(correlationID), events.TypePaymentCompleted, events.ProducerPaymentService, key, payload)
		}
	} else {
		payload := events.PaymentFailed{
			PaymentID:  payment.ID.String(),
			CheckoutID: payment.CheckoutID.String(),
			OrderID:    payment.OrderID.String(),
			Reason:     reason,
		}
		if cause != nil {
			env, err = events.Follow(*cause, events.TypePaymentFailed, events.ProducerPaymentService, key, payload)
		} else {
			env, err = events.New(derefOrNew(correlationID), events.TypePaymentFailed, events.ProducerPaymentService, key, payload)
		}
	}
	if err != nil {
		return events.Envelope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment outcome event")
	}
	return env, nil
}

func derefOrNew(id *uuid.UUID) uuid.UUID {
	if id != nil {
		return *id
	}
	return uuid.New()
}
