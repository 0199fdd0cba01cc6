package controllers

import (
	"net/http"

	"github.com/mambaservices/storefront-backend/api/responses"
	"github.com/mambaservices/storefront-backend/pkg/config"
	"github.com/mambaservices/storefront-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mamba-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the shared dependencies. A degraded redis
// makes the instance unready because both the webhook guard and the rate
// limiter depend on it.
func HealthReady(cfg *config.Config, pinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mamba-Env", cfg.App.Env)

		status := "ready"
		httpStatus := http.StatusOK
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				status = "degraded"
				httpStatus = http.StatusServiceUnavailable
			}
		}
		responses.WriteSuccessStatus(w, httpStatus, map[string]string{"status": status})
	}
}
