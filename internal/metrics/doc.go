// Package metrics defines the Prometheus metrics exposed by the media
// pipeline: queue depth and throughput, worker utilization, extraction
// timing, storage placement counters, memory pressure, filesystem retry
// outcomes, and HTTP request metrics.
//
// All metrics are registered with the default registry via promauto and
// served by the /metrics endpoint.
package metrics
