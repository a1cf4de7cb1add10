// Package worker drains the task queue. A fixed pool of goroutines pulls
// tasks and advances each upload through the PROCESS and INDEX stages;
// SCAN tasks expand directories into per-file work. Failures are logged
// and dropped rather than retried, so a poisoned task cannot wedge the
// queue.
package worker
