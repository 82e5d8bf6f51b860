package middleware

import (
	"net/http"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

// Correlation reads the x-correlation-id header, minting a fresh id when it
// is absent or malformed, and echoes the effective id on the response. The
// id rides the request context into every event the handler emits.
func Correlation(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := correlation.EnsureOrGenerate(r.Header.Get(correlation.Header))

			w.Header().Set(correlation.Header, id.String())

			ctx := correlation.WithID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithCorrelationID(ctx, id.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
