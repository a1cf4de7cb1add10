package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  available,
		},
		{
			name:       "I/O-bound (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  available * 2,
		},
		{
			name:       "limit below calculated count",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "very low multiplier floors at 1",
			multiplier: 0.01,
			limit:      0,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WORKERS", "")

			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
	}{
		{"valid override", "8", 0, 8},
		{"override capped by limit", "20", 10, 10},
		{"override below limit", "5", 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WORKERS", tt.envValue)

			if got := Count(1.0, tt.limit); got != tt.expected {
				t.Errorf("Count(1.0, %d) with WORKERS=%s = %d, want %d",
					tt.limit, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestCountIgnoresInvalidOverride(t *testing.T) {
	for _, bad := range []string{"invalid", "-3", "0"} {
		t.Setenv("WORKERS", bad)

		got := Count(1.0, 0)
		if got < 1 {
			t.Errorf("Count with WORKERS=%q = %d, want >= 1", bad, got)
		}
	}
}

func TestForPool(t *testing.T) {
	t.Setenv("WORKERS", "")

	got := ForPool()
	if got < 2 {
		t.Errorf("ForPool() = %d, want >= 2", got)
	}
}
