package osutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
)

const (
	// This is the default value for cgroup's limit_in_bytes. This is not a
	// valid value and indicates that the memory is not restricted.
	// See https://unix.stackexchange.com/questions/420906/what-is-the-value-for-the-cgroups-limit-in-bytes-if-the-memory-is-not-restricted
	unrestrictedMemoryLimit = 9223372036854771712
)

var cgroupMemoryLimitLocations = []string{
	"/sys/fs/cgroup/memory/memory.limit_in_bytes", // cgroup v1
	"/sys/fs/cgroup/memory.max",                   // cgroup v2
}

// GetTotalMemory returns the total available memory size. The call is
// container-aware.
func GetTotalMemory() uint64 {
	totalMemory := memory.TotalMemory()

	for _, location := range cgroupMemoryLimitLocations {
		raw, err := os.ReadFile(location)
		if err != nil {
			continue
		}

		if limit, ok := parseCgroupMemoryLimit(string(raw)); ok && limit < totalMemory {
			return limit
		}
	}
	return totalMemory
}

// GetBallastSize returns the number of bytes a GC ballast should occupy to
// fill capacity (0, 1] of total memory. Out of range capacities yield 0.
func GetBallastSize(capacity float64) uint64 {
	if capacity <= 0 || capacity > 1 {
		return 0
	}
	return uint64(capacity * float64(GetTotalMemory()))
}

func parseCgroupMemoryLimit(raw string) (uint64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "max" {
		return 0, false
	}

	limit, err := strconv.ParseUint(value, 10, 64)
	if err != nil || limit == 0 || limit == unrestrictedMemoryLimit {
		return 0, false
	}
	return limit, true
}
