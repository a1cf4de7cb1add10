package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-pipeline/internal/logging"
)

// HealthResponse is the detailed health report served at /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Uptime     string `json:"uptime"`
	QueueDepth int    `json:"queue_depth"`
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// HealthCheck reports pipeline health plus a few cheap runtime stats.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		QueueDepth: h.queue.Depth(),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// LivenessCheck answers liveness probes. HEAD requests get an empty 200
// so probes stay cheap.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "ok")
}

// ReadinessCheck reports whether the pipeline can accept work: the asset
// store must answer queries and the primary repository must be
// registered. Failures return 503 so load balancers stop routing
// uploads here.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.assets.ListAssets(r.Context(), 1, 0); err != nil {
		logging.Warn("Readiness check failed: %v", err)
		writeJSONError(w, "asset store unavailable", http.StatusServiceUnavailable)
		return
	}
	if h.manager != nil {
		if _, err := h.manager.GetRepository(h.repoID); err != nil {
			logging.Warn("Readiness check failed: %v", err)
			writeJSONError(w, "storage repository unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSONStatus(w, "ready")
}
