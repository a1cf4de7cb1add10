package handlers

import (
	"time"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/queue"
	"media-pipeline/internal/storage"
)

// Handlers bundles the ingestion API endpoints and their collaborators.
type Handlers struct {
	queue    *queue.TaskQueue
	staging  *storage.StagingArea
	assets   assets.AssetService
	manager  *storage.Manager
	repoID   string
	repoPath string

	// maxUploadBytes caps a single upload. Zero disables the cap.
	maxUploadBytes int64

	startedAt time.Time
}

// Config wires the handlers' collaborators.
type Config struct {
	Queue          *queue.TaskQueue
	Staging        *storage.StagingArea
	Assets         assets.AssetService
	Manager        *storage.Manager
	RepositoryID   string
	RepositoryPath string
	MaxUploadBytes int64
}

func New(cfg Config) *Handlers {
	return &Handlers{
		queue:          cfg.Queue,
		staging:        cfg.Staging,
		assets:         cfg.Assets,
		manager:        cfg.Manager,
		repoID:         cfg.RepositoryID,
		repoPath:       cfg.RepositoryPath,
		maxUploadBytes: cfg.MaxUploadBytes,
		startedAt:      time.Now(),
	}
}
