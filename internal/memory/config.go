package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-pipeline/internal/logging"
)

// DefaultMemoryRatio is the fraction of the container limit given to the
// Go heap. The remainder is headroom for exiftool subprocesses, image
// decode buffers, and goroutine stacks.
const DefaultMemoryRatio = 0.85

// ConfigResult reports how GOMEMLIMIT was configured at startup.
type ConfigResult struct {
	// Configured indicates whether GOMEMLIMIT ended up set.
	Configured bool

	// Source is "GOMEMLIMIT", "MEMORY_LIMIT", or "none".
	Source string

	// ContainerLimit is the container memory limit in bytes, 0 if unset.
	ContainerLimit int64

	// GoMemLimit is the resulting GOMEMLIMIT in bytes, 0 if unset.
	GoMemLimit int64

	// Ratio is the heap fraction applied to the container limit.
	Ratio float64
}

// ConfigureFromEnv derives GOMEMLIMIT from the container's memory limit.
// Call it early in main, before the pipeline allocates in earnest.
//
// An explicit GOMEMLIMIT wins outright. Otherwise MEMORY_LIMIT (bytes,
// typically injected via the Kubernetes Downward API) is scaled by
// MEMORY_RATIO and applied.
func ConfigureFromEnv() ConfigResult {
	result := ConfigResult{}

	if goMemLimitEnv := os.Getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = "GOMEMLIMIT"
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	memLimitStr := os.Getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		result.Source = "none"
		return result
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_LIMIT %q: %v", memLimitStr, err)
		result.Source = "none"
		return result
	}

	ratio := ratioFromEnv()
	goMemLimit := int64(float64(memLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = "MEMORY_LIMIT"
	result.ContainerLimit = memLimit
	result.GoMemLimit = goMemLimit
	result.Ratio = ratio

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		formatBytes(goMemLimit), ratio*100, formatBytes(memLimit))

	return result
}

// ratioFromEnv reads MEMORY_RATIO, falling back to the default for
// missing, unparsable, or out-of-range values.
func ratioFromEnv() float64 {
	ratioStr := os.Getenv("MEMORY_RATIO")
	if ratioStr == "" {
		return DefaultMemoryRatio
	}

	ratio, err := strconv.ParseFloat(ratioStr, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", ratioStr, err, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	if ratio <= 0 || ratio > 1.0 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", ratioStr, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
