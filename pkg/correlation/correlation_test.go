package correlation

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestContextRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithID(context.Background(), id)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected a correlation id in context")
	}
	if got != id {
		t.Fatalf("expected %s got %s", id, got)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("bare context must not carry a correlation id")
	}
}

func TestEnsureOrGenerate(t *testing.T) {
	id := uuid.New()
	if got := EnsureOrGenerate(id.String()); got != id {
		t.Fatalf("valid id must be kept, expected %s got %s", id, got)
	}
	if got := EnsureOrGenerate(""); got == uuid.Nil {
		t.Fatal("empty header must mint an id")
	}
	if got := EnsureOrGenerate("not-a-uuid"); got == uuid.Nil {
		t.Fatal("malformed header must mint an id")
	}
}
