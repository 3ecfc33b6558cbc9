package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/peachwood/api/internal/domain"
	"github.com/peachwood/api/internal/services"
)

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	system services.SystemService
}

// NewHealthHandlers constructs a HealthHandlers instance. A nil system
// service degrades to a static liveness response.
func NewHealthHandlers(system services.SystemService) *HealthHandlers {
	return &HealthHandlers{system: system}
}

// Health reports process liveness.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status": "OK",
	}
	if h.system != nil {
		snapshot := h.system.Health(r.Context())
		payload["timestamp"] = snapshot.Timestamp
		payload["uptime"] = snapshot.Uptime
		payload["environment"] = snapshot.Environment
	}
	writeHealthJSON(w, http.StatusOK, payload)
}

// Readyz reports dependency readiness; a degraded or failed dependency
// returns 503 so orchestrators stop routing traffic here.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		writeHealthJSON(w, http.StatusOK, map[string]any{"status": "OK"})
		return
	}

	report, err := h.system.Readiness(r.Context())
	if err != nil {
		writeHealthJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]any, len(report.Checks))
	for name, check := range report.Checks {
		entry := map[string]any{
			"status":  string(check.Status),
			"latency": check.Latency.String(),
		}
		if check.Error != "" {
			entry["error"] = check.Error
		}
		checks[name] = entry
	}

	writeHealthJSON(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

func writeHealthJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
