package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
)

func TestCorrelationEchoesProvidedID(t *testing.T) {
	id := uuid.New()

	var seen uuid.UUID
	handler := Correlation(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := correlation.FromContext(r.Context())
		require.True(t, ok)
		seen = got
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(correlation.Header, id.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, id, seen)
	require.Equal(t, id.String(), rec.Header().Get(correlation.Header))
}

func TestCorrelationMintsIDWhenMissingOrMalformed(t *testing.T) {
	for _, raw := range []string{"", "garbage"} {
		handler := Correlation(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := correlation.FromContext(r.Context())
			require.True(t, ok)
		}))

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		if raw != "" {
			req.Header.Set(correlation.Header, raw)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		echoed := rec.Header().Get(correlation.Header)
		require.NotEmpty(t, echoed)
		require.NotEqual(t, raw, echoed)
		_, err := uuid.Parse(echoed)
		require.NoError(t, err)
	}
}
