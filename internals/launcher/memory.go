package launcher

import (
	"math"

	"github.com/pbnjay/memory"
)

// DefaultMaxMemoryMiB returns the heap size used if none is configured.
// 1GiB for base Minecraft or a quarter of the system memory if that is more,
// but never more than 85% of the system memory.
func DefaultMaxMemoryMiB() int {
	return maxMemoryMiB(memory.TotalMemory())
}

func maxMemoryMiB(total uint64) int {
	// unknown system memory
	if total == 0 {
		return 1024
	}
	sysMemMiB := float64(total) / 1024 / 1024

	maxRamMiB := math.Max(1024, sysMemMiB/4)
	return int(math.Min(maxRamMiB, sysMemMiB*0.85))
}
