package assets

import (
	"context"
	"errors"
)

// ErrAssetNotFound is returned when a lookup matches no stored asset.
var ErrAssetNotFound = errors.New("asset not found")

// AssetService persists assets and their search index entries.
type AssetService interface {
	// SaveAsset stores a processed asset record.
	SaveAsset(ctx context.Context, asset *Asset) error

	// GetAssetByHash returns the asset with the given content hash, or
	// ErrAssetNotFound.
	GetAssetByHash(ctx context.Context, contentHash string) (*Asset, error)

	// GetAsset returns the asset with the given ID, or ErrAssetNotFound.
	GetAsset(ctx context.Context, id string) (*Asset, error)

	// ListAssets returns up to limit assets ordered by upload time,
	// newest first.
	ListAssets(ctx context.Context, limit, offset int) ([]*Asset, error)

	// SaveAssetIndex records that the asset with the given content hash
	// was indexed by the task with the given ID. Used by the INDEX
	// pipeline stage; idempotent per (taskID, contentHash).
	SaveAssetIndex(ctx context.Context, taskID, contentHash string) error

	// SaveThumbnail records a generated thumbnail for an asset. Size is
	// one of ThumbnailSmall, ThumbnailMedium, ThumbnailLarge.
	SaveThumbnail(ctx context.Context, assetID, size, path string) error

	// GetThumbnails returns size -> path for an asset.
	GetThumbnails(ctx context.Context, assetID string) (map[string]string, error)
}
