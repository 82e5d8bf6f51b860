// Package correlation carries the request correlation id through contexts,
// HTTP headers and Kafka record headers.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP and Kafka header carrying the correlation id.
const Header = "x-correlation-id"

// WithID returns a child context carrying id.
func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation id carried by ctx, if any.
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}

// EnsureOrGenerate parses raw as a correlation id, minting a fresh one when
// raw is empty or malformed. Inbound requests never get rejected over a bad
// correlation header.
func EnsureOrGenerate(raw string) uuid.UUID {
	if raw == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.New()
	}
	return id
}
