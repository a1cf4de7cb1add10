// Package workers provides utilities for determining worker pool sizes in
// containerized environments.
//
// Go 1.19+ sets GOMAXPROCS from container CPU limits, while
// runtime.NumCPU() still reports the host CPU count. The helpers here size
// pools from GOMAXPROCS so the pipeline respects cgroup constraints, with a
// WORKERS environment variable override for operators.
package workers
