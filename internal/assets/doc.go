// Package assets persists processed media assets and their search index
// entries in SQLite.
//
// Assets are keyed by content hash: storing the same bytes twice updates
// the existing record instead of duplicating it. Index entries written by
// the INDEX pipeline stage are keyed by (task ID, content hash) and are
// idempotent, matching the queue's at-least-once delivery.
package assets
