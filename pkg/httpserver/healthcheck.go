package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/funnel/pkg/logger"
)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// HealthReport is the body written by Health.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health returns a probe handler. Without checks it is a liveness probe that
// always reports "alive". With checks it reports "ready" when every check
// passes and 503 "not_ready" otherwise, listing each failing check.
func Health(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			writeHealth(w, http.StatusOK, HealthReport{Status: "alive"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := HealthReport{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.WarnContext(ctx, "readiness check failed", slog.String("check", c.Name), logger.Error(err))
				report.Checks[c.Name] = err.Error()
				report.Status = "not_ready"
				status = http.StatusServiceUnavailable
				continue
			}
			report.Checks[c.Name] = "ok"
		}
		writeHealth(w, status, report)
	}
}

func writeHealth(w http.ResponseWriter, status int, report HealthReport) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
