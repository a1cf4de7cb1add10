package extract

import (
	"strings"
	"testing"
)

func TestCanHandleFileSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
		ok   bool
	}{
		{"Small file", 10 * megabyte, true},
		{"Large file", 5 * gigabyte, true},
		{"At ceiling", 20 * gigabyte, true},
		{"Over ceiling", 20*gigabyte + 1, false},
		{"Way over ceiling", 50 * gigabyte, false},
		{"Negative size", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CanHandleFileSize(tt.size)
			if ok != tt.ok {
				t.Errorf("CanHandleFileSize(%d) = %v, want %v", tt.size, ok, tt.ok)
			}
			if ok && reason != "" {
				t.Errorf("Expected empty reason for accepted size, got %q", reason)
			}
			if !ok && reason == "" {
				t.Error("Expected a reason for rejected size")
			}
		})
	}

	t.Run("Rejection reason names the limit", func(t *testing.T) {
		ok, reason := CanHandleFileSize(21 * gigabyte)
		if ok {
			t.Fatal("Expected 21GB to be rejected")
		}
		if !strings.Contains(reason, "exceeds maximum supported limit") {
			t.Errorf("Reason %q should mention exceeding the maximum supported limit", reason)
		}
	})
}

func TestIsLargeFile(t *testing.T) {
	tests := []struct {
		size int64
		want bool
	}{
		{50 * megabyte, false},
		{100 * megabyte, false},
		{150 * megabyte, true},
		{2 * gigabyte, true},
	}

	for _, tt := range tests {
		if got := IsLargeFile(tt.size); got != tt.want {
			t.Errorf("IsLargeFile(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestGetOptimalBufferSize(t *testing.T) {
	tests := []struct {
		size int64
		want int
	}{
		{10 * megabyte, 64 * kilobyte},
		{100 * megabyte, 64 * kilobyte},
		{200 * megabyte, 128 * kilobyte},
		{500 * megabyte, 128 * kilobyte},
		{600 * megabyte, 256 * kilobyte},
		{10 * gigabyte, 256 * kilobyte},
	}

	for _, tt := range tests {
		if got := GetOptimalBufferSize(tt.size); got != tt.want {
			t.Errorf("GetOptimalBufferSize(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestGetOptimalWorkerCount(t *testing.T) {
	n := GetOptimalWorkerCount()
	if n < 1 || n > 8 {
		t.Errorf("GetOptimalWorkerCount() = %d, want value in [1, 8]", n)
	}
}

func TestResourceEstimates(t *testing.T) {
	if mem := GetAvailableMemory(); mem == 0 {
		t.Error("GetAvailableMemory() returned 0")
	}
	if disk := GetAvailableDiskSpace(); disk == 0 {
		t.Error("GetAvailableDiskSpace() returned 0")
	}
}
