package assets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
)

const defaultTimeout = 5 * time.Second

// Store is the SQLite-backed AssetService implementation.
type Store struct {
	db     *sql.DB
	dbPath string
}

var _ AssetService = (*Store)(nil)

// NewStore opens (creating if needed) the asset database at dbPath. The
// parent directory must already exist and be writable.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Asset database path: %s", dbPath)

	// WAL mode and a busy timeout keep concurrent workers from hitting
	// "database is locked" errors.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to asset database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize asset schema: %w", err)
	}

	logging.Info("Asset database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		repository_id TEXT NOT NULL,
		storage_path TEXT NOT NULL,
		type TEXT NOT NULL,
		mime_type TEXT,
		size INTEGER NOT NULL DEFAULT 0,
		owner_id INTEGER NOT NULL DEFAULT 0,
		upload_time INTEGER NOT NULL,
		metadata TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_content_hash ON assets(content_hash);
	CREATE INDEX IF NOT EXISTS idx_assets_type ON assets(type);
	CREATE INDEX IF NOT EXISTS idx_assets_upload_time ON assets(upload_time);

	CREATE TABLE IF NOT EXISTS asset_index (
		task_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		indexed_at INTEGER NOT NULL,
		PRIMARY KEY (task_id, content_hash)
	);

	CREATE TABLE IF NOT EXISTS thumbnails (
		asset_id TEXT NOT NULL,
		size TEXT NOT NULL,
		path TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (asset_id, size)
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAsset inserts or replaces the asset record keyed by content hash,
// so reprocessing the same bytes never duplicates rows.
func (s *Store) SaveAsset(ctx context.Context, asset *Asset) error {
	if asset == nil {
		return errors.New("asset cannot be nil")
	}
	if asset.ID == "" || asset.ContentHash == "" {
		return errors.New("asset ID and content hash are required")
	}

	var metadataJSON []byte
	if asset.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(asset.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize asset metadata: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, content_hash, original_filename, repository_id, storage_path, type, mime_type, size, owner_id, upload_time, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			original_filename = excluded.original_filename,
			repository_id = excluded.repository_id,
			storage_path = excluded.storage_path,
			mime_type = excluded.mime_type,
			size = excluded.size,
			metadata = excluded.metadata`,
		asset.ID, asset.ContentHash, asset.OriginalFilename, asset.RepositoryID,
		asset.StoragePath, string(asset.Type), asset.MimeType, asset.Size,
		asset.OwnerID, asset.UploadTime.Unix(), nullableString(metadataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

// GetAssetByHash returns the asset with the given content hash.
func (s *Store) GetAssetByHash(ctx context.Context, contentHash string) (*Asset, error) {
	return s.getAsset(ctx, "content_hash = ?", contentHash)
}

// GetAsset returns the asset with the given ID.
func (s *Store) GetAsset(ctx context.Context, id string) (*Asset, error) {
	return s.getAsset(ctx, "id = ?", id)
}

func (s *Store) getAsset(ctx context.Context, where string, arg any) (*Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, content_hash, original_filename, repository_id, storage_path, type, mime_type, size, owner_id, upload_time, metadata
		FROM assets WHERE `+where, arg)

	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	return asset, nil
}

// ListAssets returns assets ordered newest first.
func (s *Store) ListAssets(ctx context.Context, limit, offset int) ([]*Asset, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_hash, original_filename, repository_id, storage_path, type, mime_type, size, owner_id, upload_time, metadata
		FROM assets ORDER BY upload_time DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var result []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

// SaveAssetIndex records an index entry. Replaying the same (taskID,
// contentHash) pair is a no-op, which keeps the INDEX stage idempotent
// under at-least-once task delivery.
func (s *Store) SaveAssetIndex(ctx context.Context, taskID, contentHash string) error {
	if taskID == "" || contentHash == "" {
		return errors.New("task ID and content hash are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO asset_index (task_id, content_hash, indexed_at)
		VALUES (?, ?, ?)`,
		taskID, contentHash, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save asset index: %w", err)
	}
	return nil
}

// SaveThumbnail records a generated thumbnail path for an asset.
func (s *Store) SaveThumbnail(ctx context.Context, assetID, size, path string) error {
	if assetID == "" || size == "" || path == "" {
		return errors.New("asset ID, size and path are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thumbnails (asset_id, size, path, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(asset_id, size) DO UPDATE SET path = excluded.path`,
		assetID, size, path, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}

// GetThumbnails returns size -> path for an asset.
func (s *Store) GetThumbnails(ctx context.Context, assetID string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT size, path FROM thumbnails WHERE asset_id = ?`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thumbnails: %w", err)
	}
	defer rows.Close()

	thumbs := make(map[string]string)
	for rows.Next() {
		var size, path string
		if err := rows.Scan(&size, &path); err != nil {
			return nil, fmt.Errorf("failed to scan thumbnail: %w", err)
		}
		thumbs[size] = path
	}
	return thumbs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*Asset, error) {
	var (
		asset      Asset
		assetType  string
		uploadUnix int64
		metadata   sql.NullString
	)
	err := row.Scan(&asset.ID, &asset.ContentHash, &asset.OriginalFilename,
		&asset.RepositoryID, &asset.StoragePath, &assetType, &asset.MimeType,
		&asset.Size, &asset.OwnerID, &uploadUnix, &metadata)
	if err != nil {
		return nil, err
	}

	asset.Type = mediatypes.AssetType(assetType)
	asset.UploadTime = time.Unix(uploadUnix, 0)
	if metadata.Valid && metadata.String != "" {
		// Keep the raw document; callers that want typed metadata decode
		// it against the asset type.
		var doc map[string]any
		if err := json.Unmarshal([]byte(metadata.String), &doc); err == nil {
			asset.Metadata = doc
		}
	}
	return &asset, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
