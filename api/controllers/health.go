package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/lastros/pos-backend/api/responses"
	"github.com/lastros/pos-backend/pkg/config"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck is one dependency probed by /health/ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Lastros-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check and fails with DEPENDENCY_ERROR on the first
// one that does not answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Lastros-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{"status": "ready"}
		for _, check := range checks {
			if check.Ping == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable").
					WithDetails(map[string]any{"dependency": check.Name}))
				return
			}
			status[check.Name] = "ok"
		}
		responses.WriteSuccess(w, status)
	}
}
