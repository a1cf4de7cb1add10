package processor

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Decoders for the photo formats the pipeline accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/logging"
)

const thumbnailJPEGQuality = 85

// generateThumbnails renders the small/medium/large variants of a stored
// photo and records their paths. A single undecodable image fails all
// sizes; per-size failures are logged and skipped.
func (p *Processor) generateThumbnails(ctx context.Context, asset *assets.Asset) error {
	repo, err := p.manager.GetRepository(asset.RepositoryID)
	if err != nil {
		return err
	}
	srcPath := filepath.Join(repo.Path, asset.StoragePath)

	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	for size, pixels := range assets.ThumbnailPixels {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		thumb := imaging.Fit(src, pixels, pixels, imaging.Lanczos)
		thumbPath := filepath.Join(p.thumbRoot, fmt.Sprintf("%s_%s.jpg", asset.ID, size))
		if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(thumbnailJPEGQuality)); err != nil {
			logging.Warn("Failed to write %s thumbnail for asset %s: %v", size, asset.ID, err)
			continue
		}
		if err := p.assets.SaveThumbnail(ctx, asset.ID, size, thumbPath); err != nil {
			logging.Warn("Failed to record %s thumbnail for asset %s: %v", size, asset.ID, err)
		}
	}
	return nil
}
