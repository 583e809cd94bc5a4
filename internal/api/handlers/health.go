package handlers

import (
	"context"
	"net/http"
	"route-generation-service/internal/platform/obs"
	"time"
)

// HealthHandler serves liveness and readiness probes. Check, when set,
// verifies the backing store is reachable.
type HealthHandler struct {
	Check func(ctx context.Context) error
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.Check(ctx); err != nil {
			obs.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
