package assets

import (
	"time"

	"media-pipeline/internal/mediatypes"
)

// Asset is one stored media file and its extracted metadata.
type Asset struct {
	// ID is a UUID assigned at processing time.
	ID string `json:"id"`

	// ContentHash is the BLAKE3 hex digest of the file bytes. Two assets
	// with the same hash are the same content.
	ContentHash string `json:"content_hash"`

	// OriginalFilename is the name the file was uploaded or scanned as.
	OriginalFilename string `json:"original_filename"`

	// RepositoryID and StoragePath locate the bytes: StoragePath is
	// relative to the repository root.
	RepositoryID string `json:"repository_id"`
	StoragePath  string `json:"storage_path"`

	Type     mediatypes.AssetType `json:"type"`
	MimeType string               `json:"mime_type"`
	Size     int64                `json:"size"`

	// OwnerID identifies the uploading user. Zero for scanned files.
	OwnerID int `json:"owner_id"`

	UploadTime time.Time `json:"upload_time"`

	// Metadata holds the type-specific extraction result
	// (extract.PhotoMetadata and friends), serialized as JSON at rest.
	Metadata any `json:"metadata,omitempty"`
}

// Thumbnail sizes generated per photo asset.
const (
	ThumbnailSmall  = "small"
	ThumbnailMedium = "medium"
	ThumbnailLarge  = "large"
)

// ThumbnailPixels maps a thumbnail size name to its bounding box edge.
var ThumbnailPixels = map[string]int{
	ThumbnailSmall:  256,
	ThumbnailMedium: 768,
	ThumbnailLarge:  1920,
}
