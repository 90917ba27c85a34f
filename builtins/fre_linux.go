//go:build linux

package builtins

import (
	"runtime"

	"github.com/tklauser/go-sysconf"
)

// freeMemory reports available physical memory in bytes
func freeMemory() int64 {
	pages, err := sysconf.Sysconf(sysconf.SC_AVPHYS_PAGES)
	if err != nil {
		return heapFree()
	}
	size, err := sysconf.Sysconf(sysconf.SC_PAGESIZE)
	if err != nil {
		return heapFree()
	}
	return pages * size
}

func heapFree() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapIdle)
}
