package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/extract"
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/hash"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"
	"media-pipeline/internal/storage"
)

// Embedder produces vector embeddings for semantic search. Implementations
// talk to an external model server; a nil Embedder disables embedding.
type Embedder interface {
	EmbedImage(ctx context.Context, path string) ([]float32, error)
}

// Processor is the synchronous unit of work behind a PROCESS task: verify
// the content hash, extract metadata, place the bytes in the primary
// repository, persist the asset record, and generate thumbnails.
type Processor struct {
	assets    assets.AssetService
	manager   *storage.Manager
	staging   *storage.StagingArea
	extractor *extract.Extractor
	repoID    string
	thumbRoot string
	embedder  Embedder
}

// Config wires a Processor's collaborators.
type Config struct {
	Assets       assets.AssetService
	Manager      *storage.Manager
	Staging      *storage.StagingArea
	Extractor    *extract.Extractor
	RepositoryID string

	// ThumbnailRoot is where generated thumbnails are written. Empty
	// disables thumbnail generation.
	ThumbnailRoot string

	// Embedder is optional; nil disables embeddings.
	Embedder Embedder
}

// New creates a Processor. All collaborators except Embedder and
// ThumbnailRoot are required.
func New(cfg Config) (*Processor, error) {
	if cfg.Assets == nil {
		return nil, fmt.Errorf("asset service is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("storage manager is required")
	}
	if cfg.Staging == nil {
		return nil, fmt.Errorf("staging area is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if cfg.RepositoryID == "" {
		return nil, fmt.Errorf("repository ID is required")
	}

	if cfg.ThumbnailRoot != "" {
		if err := os.MkdirAll(cfg.ThumbnailRoot, 0755); err != nil {
			return nil, fmt.Errorf("failed to create thumbnail directory: %w", err)
		}
	}

	return &Processor{
		assets:    cfg.Assets,
		manager:   cfg.Manager,
		staging:   cfg.Staging,
		extractor: cfg.Extractor,
		repoID:    cfg.RepositoryID,
		thumbRoot: cfg.ThumbnailRoot,
		embedder:  cfg.Embedder,
	}, nil
}

// ProcessNewAsset ingests a staged upload. clientHash, when non-empty, is
// the hash the uploader declared; a mismatch with the recomputed hash is
// a hard error and the file is not stored. The staged file is removed
// only after the asset's bytes are safely placed in the repository.
func (p *Processor) ProcessNewAsset(ctx context.Context, stagedPath, userID, fileName, clientHash string) (*assets.Asset, error) {
	if fileName == "" {
		fileName = storage.OriginalFilename(stagedPath)
	}

	info, err := filesystem.StatWithRetry(stagedPath, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to stat staged file: %w", err)
	}

	contentHash, err := hash.File(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash staged file: %w", err)
	}

	if clientHash != "" && !strings.EqualFold(clientHash, contentHash) {
		return nil, fmt.Errorf("content hash mismatch for %s: client declared %s, recomputed %s", fileName, clientHash, contentHash)
	}

	// Duplicate content: the bytes are already in the repository, so the
	// staged copy is redundant.
	if existing, err := p.assets.GetAssetByHash(ctx, contentHash); err == nil {
		metrics.DuplicateAssetsTotal.Inc()
		logging.Info("Duplicate upload %s matches existing asset %s, skipping placement", fileName, existing.ID)
		if err := p.staging.Remove(stagedPath); err != nil {
			logging.Warn("Failed to remove duplicate staged file %s: %v", stagedPath, err)
		}
		return existing, nil
	}

	asset := &assets.Asset{
		ID:               uuid.New().String(),
		ContentHash:      contentHash,
		OriginalFilename: fileName,
		RepositoryID:     p.repoID,
		Type:             mediatypes.GetAssetType(filepath.Ext(fileName)),
		MimeType:         mediatypes.GetMimeType(filepath.Ext(fileName)),
		Size:             info.Size(),
		OwnerID:          parseOwnerID(userID),
		UploadTime:       time.Now(),
	}

	// Extraction reads the staged file, so it must happen before the move.
	asset.Metadata = p.extractMetadata(ctx, stagedPath, asset.Type, fileName, info.Size())

	relPath, err := p.manager.PlaceFile(p.repoID, stagedPath, fileName, contentHash)
	if err != nil {
		// The staged file is still intact; log its location so the upload
		// can be replayed manually.
		logging.Error("Failed to place %s (staged at %s): %v", fileName, stagedPath, err)
		return nil, fmt.Errorf("failed to place asset: %w", err)
	}
	asset.StoragePath = relPath

	if err := p.assets.SaveAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to save asset record: %w", err)
	}

	metrics.AssetsStoredTotal.WithLabelValues(string(asset.Type)).Inc()
	p.postProcess(ctx, asset)

	return asset, nil
}

// ProcessExistingAsset ingests a file already resident inside the primary
// repository (rescans). The file stays where it is; no staging cleanup.
func (p *Processor) ProcessExistingAsset(ctx context.Context, filePath, userID, fileName string) (*assets.Asset, error) {
	if fileName == "" {
		fileName = filepath.Base(filePath)
	}

	info, err := filesystem.StatWithRetry(filePath, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	contentHash, err := hash.File(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	if existing, err := p.assets.GetAssetByHash(ctx, contentHash); err == nil {
		logging.Debug("Rescan of %s matches existing asset %s", fileName, existing.ID)
		return existing, nil
	}

	repo, err := p.manager.GetRepository(p.repoID)
	if err != nil {
		return nil, err
	}
	relPath, err := filepath.Rel(repo.Path, filePath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return nil, fmt.Errorf("file %s is outside repository %s", filePath, repo.Path)
	}

	asset := &assets.Asset{
		ID:               uuid.New().String(),
		ContentHash:      contentHash,
		OriginalFilename: fileName,
		RepositoryID:     p.repoID,
		StoragePath:      relPath,
		Type:             mediatypes.GetAssetType(filepath.Ext(fileName)),
		MimeType:         mediatypes.GetMimeType(filepath.Ext(fileName)),
		Size:             info.Size(),
		OwnerID:          parseOwnerID(userID),
		UploadTime:       time.Now(),
	}

	asset.Metadata = p.extractMetadata(ctx, filePath, asset.Type, fileName, info.Size())

	if err := p.assets.SaveAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to save asset record: %w", err)
	}

	metrics.AssetsStoredTotal.WithLabelValues(string(asset.Type)).Inc()
	p.postProcess(ctx, asset)

	return asset, nil
}

// extractMetadata runs the extractor against the file. Extraction trouble
// (tool missing, unreadable metadata) degrades to a nil result; only the
// asset's metadata is lost, never the asset.
func (p *Processor) extractMetadata(ctx context.Context, path string, assetType mediatypes.AssetType, fileName string, size int64) any {
	if !assetType.Valid() {
		logging.Debug("Skipping metadata extraction for %s: unrecognized type", fileName)
		return nil
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Warn("Failed to open %s for extraction: %v", fileName, err)
		return nil
	}
	defer f.Close()

	result, err := p.extractor.ExtractFromStream(ctx, &extract.Request{
		Reader:    f,
		AssetType: assetType,
		Filename:  fileName,
		Size:      size,
	})
	if err != nil {
		logging.Warn("Metadata extraction rejected for %s: %v", fileName, err)
		return nil
	}
	if result.Err != nil {
		logging.Warn("Metadata extraction failed for %s: %v", fileName, result.Err)
		return nil
	}
	return result.Metadata
}

// postProcess runs the non-essential steps after an asset is safely
// stored: thumbnails and embeddings. Failures are logged, never fatal.
func (p *Processor) postProcess(ctx context.Context, asset *assets.Asset) {
	if asset.Type == mediatypes.AssetTypePhoto && p.thumbRoot != "" {
		if err := p.generateThumbnails(ctx, asset); err != nil {
			logging.Warn("Thumbnail generation failed for asset %s: %v", asset.ID, err)
		}
	}

	if p.embedder != nil && asset.Type == mediatypes.AssetTypePhoto {
		repo, err := p.manager.GetRepository(asset.RepositoryID)
		if err != nil {
			logging.Warn("Skipping embedding for asset %s: repository %s not found: %v", asset.ID, asset.RepositoryID, err)
			return
		}
		fullPath := filepath.Join(repo.Path, asset.StoragePath)
		if _, err := p.embedder.EmbedImage(ctx, fullPath); err != nil {
			logging.Warn("Embedding failed for asset %s: %v", asset.ID, err)
		}
	}
}

func parseOwnerID(userID string) int {
	if userID == "" || userID == "anonymous" {
		return 0
	}
	id, err := strconv.Atoi(userID)
	if err != nil {
		return 0
	}
	return id
}
