// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - STORAGE_PATH: Path to the storage root; the primary repository lives in
//     its primary/ subdirectory (default: ./data/storage). STORAGE_DIR is
//     accepted as an alias when STORAGE_PATH is unset.
//   - STORAGE_STRATEGY: Placement strategy for new assets - date, cas, flat
//     (default: date)
//   - STORAGE_PRESERVE_FILENAME: Keep original filenames where the strategy
//     allows it (default: true)
//   - STORAGE_DUPLICATE_HANDLING: Filename collision policy - rename, uuid,
//     overwrite (default: rename)
//   - QUEUE_DIR: Path to the durable task queue directory (default: /queue)
//   - STAGING_DIR: Path to the upload staging directory (default: /staging)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - CACHE_DIR: Path to cache directory for thumbnails (default: /cache)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - WORKERS: Worker pool size, 0 selects from CPU count (default: 0)
//   - QUEUE_BUFFER: In-memory task buffer size (default: 1000)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT: Container memory limit for automatic GOMEMLIMIT configuration
//   - MEMORY_RATIO: Percentage of MEMORY_LIMIT for Go heap (default: 0.85)
//   - GOMEMLIMIT: Direct override for Go's memory limit
//
// # Directory Setup
//
// The package validates and creates the storage, queue, staging, and database
// directories; all four must be writable or startup fails. The thumbnail
// cache is optional: if it cannot be created or written, thumbnails are
// disabled and ingestion continues without them.
//
// # Primary Repository
//
// [InitPrimaryStorage] registers the primary repository under the storage
// root, creating it on first run. A repository marker sitting directly at
// the storage root indicates a layout from before the primary/ subdirectory
// existed; startup refuses it with [storage.ErrLegacyRepository] rather than
// guessing at a migration.
package startup
