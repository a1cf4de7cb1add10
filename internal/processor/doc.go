// Package processor turns staged uploads and scanned files into stored
// assets. Processing is content-addressed: a BLAKE3 hash identifies the
// bytes, drives deduplication, and feeds the repository's placement
// strategy. Metadata extraction, thumbnails, and embeddings are best
// effort; only hashing, placement, and the database record are required
// for an asset to count as ingested.
package processor
