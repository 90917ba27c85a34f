//go:build !linux

package builtins

import "runtime"

// freeMemory reports the memory the Go heap is holding but not using
func freeMemory() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapIdle)
}
