package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/queue"
)

var errPathOutsideRepository = errors.New("scan path is outside the repository")

// ScanRequest optionally narrows a scan to a subdirectory of the repository.
type ScanRequest struct {
	Path string `json:"path"`
}

// ScanResponse is returned for an accepted scan.
type ScanResponse struct {
	TaskID string `json:"taskId"`
	Path   string `json:"path"`
	Status string `json:"status"`
}

// TriggerScan enqueues a SCAN task for the repository, or for a
// subdirectory of it when the request body names one. Scans re-ingest
// files already on disk, so they are safe to repeat.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	scanPath := h.repoPath

	if r.Body != nil && r.ContentLength != 0 {
		var req ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.Path != "" {
			resolved, err := h.resolveScanPath(req.Path)
			if err != nil {
				writeJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
			scanPath = resolved
		}
	}

	info, err := os.Stat(scanPath)
	if err != nil {
		writeJSONError(w, "scan path does not exist", http.StatusNotFound)
		return
	}
	if !info.IsDir() {
		writeJSONError(w, "scan path is not a directory", http.StatusBadRequest)
		return
	}

	task := queue.NewTask(queue.TaskTypeScan, scanPath, userIDFrom(r), filepath.Base(scanPath))
	if err := h.queue.EnqueueTask(task); err != nil {
		logging.Error("Failed to enqueue scan task for %s: %v", scanPath, err)
		writeJSONError(w, "failed to queue scan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, ScanResponse{
		TaskID: task.TaskID,
		Path:   scanPath,
		Status: "queued",
	})
}

// resolveScanPath confines a requested scan path to the repository root.
// Relative paths are joined against the root; absolute paths must
// already be inside it.
func (h *Handlers) resolveScanPath(requested string) (string, error) {
	resolved := requested
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(h.repoPath, resolved)
	}
	resolved = filepath.Clean(resolved)

	rel, err := filepath.Rel(h.repoPath, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errPathOutsideRepository
	}
	return resolved, nil
}
