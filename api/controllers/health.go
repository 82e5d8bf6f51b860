package controllers

import (
	"net/http"

	"github.com/rsmaster/o2c-backend/api/responses"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/db"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
