package handlers

import (
	"net/http"

	"media-pipeline/internal/startup"
)

// Version returns build information for the running binary.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}
