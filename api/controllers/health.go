package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/dorozco/marketpulse-backend/api/responses"
	"github.com/dorozco/marketpulse-backend/pkg/config"
	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
)

// Pinger is the connectivity check surface the readiness probe polls.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketPulse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database and redis connections. Failures are
// combined so one degraded dependency does not mask another.
func HealthReady(cfg *config.Config, db, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MarketPulse-Env", cfg.App.Env)

		var combined error
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				combined = multierr.Append(combined, err)
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				combined = multierr.Append(combined, err)
			}
		}

		if combined != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "readiness check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
