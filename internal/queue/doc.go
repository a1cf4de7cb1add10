// Package queue implements the durable, file-backed task queue that
// drives the ingestion pipeline.
//
// Durability model: tasks are appended as JSON lines to a write-ahead log
// (tasks.wal) and synced before they become deliverable; completions are
// appended to a companion done file (tasks.done). A task is durable once
// its full newline-terminated record reaches disk; a torn trailing record
// is skipped during recovery. On restart, every WAL record without a
// matching completion record is re-delivered, giving at-least-once
// semantics for idempotent consumers.
//
// Delivery: an in-memory buffered channel feeds workers. A watcher
// goroutine periodically moves WAL records into the channel when buffer
// space frees up, and an in-process delivered set prevents a record from
// being handed to two workers at once. Completed records are reclaimed by
// CleanupProcessedTasks, which rewrites the WAL and truncates the done
// file.
package queue
