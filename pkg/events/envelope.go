package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire contract wrapping every business payload with delivery
// metadata. MessageID doubles as the idempotency key: retries of the same
// logical event reuse it, new events mint a fresh one.
type Envelope struct {
	MessageID     uuid.UUID       `json:"messageId"`
	CorrelationID uuid.UUID       `json:"correlationId"`
	CausationID   *uuid.UUID      `json:"causationId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	Key           string          `json:"key"`
	Payload       json.RawMessage `json:"payload"`
}

// New builds a root envelope with a fresh message id.
func New(correlationID uuid.UUID, eventType, producer, key string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		MessageID:     uuid.New(),
		CorrelationID: correlationID,
		CausationID:   nil,
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		Key:           key,
		Payload:       raw,
	}, nil
}

// Follow builds an envelope caused by parent: same correlation id, causation
// id set to the parent's message id.
func Follow(parent Envelope, eventType, producer, key string, payload any) (Envelope, error) {
	env, err := New(parent.CorrelationID, eventType, producer, key, payload)
	if err != nil {
		return Envelope{}, err
	}
	causation := parent.MessageID
	env.CausationID = &causation
	return env, nil
}

// DecodePayload unmarshals the raw payload into dest.
func (e Envelope) DecodePayload(dest any) error {
	return json.Unmarshal(e.Payload, dest)
}

// Encode serializes the envelope for the outbox and the wire.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an envelope off the wire.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
