package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/queue"
	"media-pipeline/internal/storage"
)

type stubAssetService struct {
	mu      sync.Mutex
	byID    map[string]*assets.Asset
	thumbs  map[string]map[string]string
	listErr error
}

func newStubAssetService() *stubAssetService {
	return &stubAssetService{
		byID:   make(map[string]*assets.Asset),
		thumbs: make(map[string]map[string]string),
	}
}

func (s *stubAssetService) SaveAsset(ctx context.Context, asset *assets.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[asset.ID] = asset
	return nil
}

func (s *stubAssetService) GetAssetByHash(ctx context.Context, contentHash string) (*assets.Asset, error) {
	return nil, assets.ErrAssetNotFound
}

func (s *stubAssetService) GetAsset(ctx context.Context, id string) (*assets.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, assets.ErrAssetNotFound
}

func (s *stubAssetService) ListAssets(ctx context.Context, limit, offset int) ([]*assets.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*assets.Asset
	for _, a := range s.byID {
		out = append(out, a)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubAssetService) SaveAssetIndex(ctx context.Context, taskID, contentHash string) error {
	return nil
}

func (s *stubAssetService) SaveThumbnail(ctx context.Context, assetID, size, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thumbs[assetID] == nil {
		s.thumbs[assetID] = make(map[string]string)
	}
	s.thumbs[assetID][size] = path
	return nil
}

func (s *stubAssetService) GetThumbnails(ctx context.Context, assetID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thumbs[assetID], nil
}

type testHandlers struct {
	h       *Handlers
	queue   *queue.TaskQueue
	staging *storage.StagingArea
	assets  *stubAssetService
	repoDir string
}

func newTestHandlers(t *testing.T) *testHandlers {
	t.Helper()

	root := t.TempDir()
	q, err := queue.New(filepath.Join(root, "queue"), 16)
	if err != nil {
		t.Fatalf("queue.New: %v", err)
	}
	if err := q.Initialize(); err != nil {
		t.Fatalf("queue.Initialize: %v", err)
	}
	t.Cleanup(q.Close)

	staging, err := storage.NewStagingArea(filepath.Join(root, "staging"))
	if err != nil {
		t.Fatalf("NewStagingArea: %v", err)
	}

	repoDir := filepath.Join(root, "repo")
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	svc := newStubAssetService()
	h := New(Config{
		Queue:          q,
		Staging:        staging,
		Assets:         svc,
		RepositoryID:   "repo-1",
		RepositoryPath: repoDir,
		MaxUploadBytes: 10 << 20,
	})

	return &testHandlers{h: h, queue: q, staging: staging, assets: svc, repoDir: repoDir}
}

func multipartBody(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("part.Write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	env := newTestHandlers(t)

	body, contentType := multipartBody(t, "file", "vacation.jpg", []byte("jpeg bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Content-Hash", "abc123")
	req.Header.Set("X-User-ID", "42")
	rec := httptest.NewRecorder()

	env.h.Upload(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TaskID == "" {
		t.Error("response has empty taskId")
	}
	if resp.FileName != "vacation.jpg" {
		t.Errorf("fileName = %q, want vacation.jpg", resp.FileName)
	}
	if resp.Status != "queued" {
		t.Errorf("status = %q, want queued", resp.Status)
	}

	task, ok := env.queue.GetTask()
	if !ok {
		t.Fatal("no task enqueued")
	}
	if task.Type != queue.TaskTypeUpload {
		t.Errorf("task type = %s, want UPLOAD", task.Type)
	}
	if task.ClientHash != "abc123" {
		t.Errorf("clientHash = %q, want abc123", task.ClientHash)
	}
	if task.UserID != "42" {
		t.Errorf("userID = %q, want 42", task.UserID)
	}

	data, err := os.ReadFile(task.StagedPath)
	if err != nil {
		t.Fatalf("staged file unreadable: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("staged content = %q", data)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	env := newTestHandlers(t)

	body, contentType := multipartBody(t, "attachment", "vacation.jpg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if _, ok := env.queue.GetTask(); ok {
		t.Error("task enqueued for rejected upload")
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	env := newTestHandlers(t)

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.h.Upload(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestTriggerScanDefaultsToRepository(t *testing.T) {
	env := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	rec := httptest.NewRecorder()

	env.h.TriggerScan(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	task, ok := env.queue.GetTask()
	if !ok {
		t.Fatal("no task enqueued")
	}
	if task.Type != queue.TaskTypeScan {
		t.Errorf("task type = %s, want SCAN", task.Type)
	}
	if task.StagedPath != env.repoDir {
		t.Errorf("scan path = %q, want %q", task.StagedPath, env.repoDir)
	}
}

func TestTriggerScanSubdirectory(t *testing.T) {
	env := newTestHandlers(t)
	sub := filepath.Join(env.repoDir, "2023")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	body := bytes.NewBufferString(`{"path": "2023"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	rec := httptest.NewRecorder()

	env.h.TriggerScan(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	task, ok := env.queue.GetTask()
	if !ok {
		t.Fatal("no task enqueued")
	}
	if task.StagedPath != sub {
		t.Errorf("scan path = %q, want %q", task.StagedPath, sub)
	}
}

func TestTriggerScanRejectsOutsidePath(t *testing.T) {
	env := newTestHandlers(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"escape via dotdot", `{"path": "../elsewhere"}`, http.StatusBadRequest},
		{"absolute outside", `{"path": "/etc"}`, http.StatusBadRequest},
		{"missing directory", `{"path": "nope"}`, http.StatusNotFound},
		{"bad json", `{`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()

			env.h.TriggerScan(rec, req)

			if rec.Code != tc.code {
				t.Errorf("status = %d, want %d", rec.Code, tc.code)
			}
			if _, ok := env.queue.GetTask(); ok {
				t.Error("task enqueued for rejected scan")
			}
		})
	}
}

func TestListAssets(t *testing.T) {
	env := newTestHandlers(t)
	env.assets.byID["a1"] = &assets.Asset{ID: "a1", OriginalFilename: "one.jpg"}
	env.assets.byID["a2"] = &assets.Asset{ID: "a2", OriginalFilename: "two.jpg"}

	req := httptest.NewRequest(http.MethodGet, "/api/assets?limit=10", nil)
	rec := httptest.NewRecorder()

	env.h.ListAssets(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp AssetListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Assets) != 2 {
		t.Errorf("count = %d, assets = %d, want 2", resp.Count, len(resp.Assets))
	}
	if resp.Limit != 10 {
		t.Errorf("limit = %d, want 10", resp.Limit)
	}
}

func TestListAssetsClampsLimit(t *testing.T) {
	env := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assets?limit=99999&offset=-3", nil)
	rec := httptest.NewRecorder()

	env.h.ListAssets(rec, req)

	var resp AssetListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Limit != maxListLimit {
		t.Errorf("limit = %d, want %d", resp.Limit, maxListLimit)
	}
	if resp.Offset != 0 {
		t.Errorf("offset = %d, want 0", resp.Offset)
	}
	if resp.Assets == nil {
		t.Error("assets is null, want empty array")
	}
}

func TestGetAsset(t *testing.T) {
	env := newTestHandlers(t)
	env.assets.byID["a1"] = &assets.Asset{ID: "a1", OriginalFilename: "one.jpg"}

	router := mux.NewRouter()
	router.HandleFunc("/api/assets/{id}", env.h.GetAsset)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/a1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetAssetThumbnails(t *testing.T) {
	env := newTestHandlers(t)
	env.assets.byID["a1"] = &assets.Asset{ID: "a1"}
	env.assets.thumbs["a1"] = map[string]string{"small": "/thumbs/a1_small.jpg"}

	router := mux.NewRouter()
	router.HandleFunc("/api/assets/{id}/thumbnails", env.h.GetAssetThumbnails)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/a1/thumbnails", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		AssetID    string            `json:"asset_id"`
		Thumbnails map[string]string `json:"thumbnails"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Thumbnails["small"] != "/thumbs/a1_small.jpg" {
		t.Errorf("thumbnails = %v", resp.Thumbnails)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/missing/thumbnails", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestHandlers(t)

	rec := httptest.NewRecorder()
	env.h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.GoVersion == "" {
		t.Error("go_version is empty")
	}
}

func TestLivenessCheckHead(t *testing.T) {
	env := newTestHandlers(t)

	rec := httptest.NewRecorder()
	env.h.LivenessCheck(rec, httptest.NewRequest(http.MethodHead, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD body = %q, want empty", rec.Body.String())
	}
}

func TestReadinessCheck(t *testing.T) {
	env := newTestHandlers(t)

	rec := httptest.NewRecorder()
	env.h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	env.assets.listErr = errors.New("database is locked")
	rec = httptest.NewRecorder()
	env.h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
