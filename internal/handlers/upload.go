package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/queue"
)

// multipartMemoryLimit is how much of an upload is held in memory before
// spilling to a temp file.
const multipartMemoryLimit = 32 << 20

// UploadResponse is returned for an accepted upload.
type UploadResponse struct {
	TaskID   string `json:"taskId"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Status   string `json:"status"`
}

// Upload accepts a multipart upload, stages the bytes, and enqueues an
// UPLOAD task. The response is 202: processing happens asynchronously and
// the file is durable in staging plus the task WAL before we answer.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONError(w, "upload exceeds the maximum allowed size", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileName := filepath.Base(header.Filename)
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		writeJSONError(w, "missing filename", http.StatusBadRequest)
		return
	}
	if !mediatypes.GetAssetType(filepath.Ext(fileName)).Valid() {
		writeJSONError(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return
	}

	staged, err := h.staging.Stage(file, fileName)
	if err != nil {
		logging.Error("Failed to stage upload %s: %v", fileName, err)
		writeJSONError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	task := queue.NewTask(queue.TaskTypeUpload, staged.Path, userIDFrom(r), fileName)
	task.ClientHash = r.Header.Get("X-Content-Hash")

	if err := h.queue.EnqueueTask(task); err != nil {
		logging.Error("Failed to enqueue upload task for %s: %v", fileName, err)
		if removeErr := h.staging.Remove(staged.Path); removeErr != nil {
			logging.Warn("Failed to remove orphaned staged file %s: %v", staged.Path, removeErr)
		}
		writeJSONError(w, "failed to queue upload", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, UploadResponse{
		TaskID:   task.TaskID,
		FileName: fileName,
		Size:     staged.Size,
		Status:   "queued",
	})
}

// userIDFrom extracts the uploading user's identity. There is no auth
// layer in front of the pipeline; trust the header the gateway sets.
func userIDFrom(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}
