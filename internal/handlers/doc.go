// Package handlers implements the HTTP API for the ingestion pipeline.
//
// The API is intentionally small: uploads and scans enqueue durable tasks
// and return 202 immediately, asset reads serve what the workers have
// persisted, and the remaining endpoints are operational (health probes,
// metrics, version).
//
// Endpoints:
//
//	POST /api/upload              multipart upload, enqueues an UPLOAD task
//	POST /api/scan                enqueues a SCAN task for the repository
//	GET  /api/assets              paged asset listing
//	GET  /api/assets/{id}         single asset
//	GET  /api/assets/{id}/thumbnails
//	GET  /health                  detailed health report
//	GET  /livez, /readyz          probe endpoints
//	GET  /version                 build information
//	GET  /metrics                 Prometheus registry (own listener)
package handlers
