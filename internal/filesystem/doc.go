/*
Package filesystem provides resilient filesystem operations with automatic retry
logic for NFS stale file handle errors.

Ingestion repositories and staging areas are commonly network mounts; a scan or
hash that hits a transient ESTALE (errno 116) should retry rather than fail the
task. This package wraps os.Stat and os.Open with capped exponential backoff
retries that trigger only on ESTALE. All other errors fail immediately.

Basic usage:

	info, err := filesystem.StatWithRetry("/storage/primary/photo.jpg", filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}

	file, err := filesystem.OpenWithRetry("/storage/primary/photo.jpg", filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer file.Close()

Defaults are 3 retries starting at 50ms backoff, capped at 500ms.

Retry outcomes are exported as Prometheus metrics labeled by operation and
volume. The volume label comes from a VolumeResolver that maps paths to the
configured mount names (storage, staging, queue, database); set one at startup
with SetDefaultVolumeResolver.
*/
package filesystem
