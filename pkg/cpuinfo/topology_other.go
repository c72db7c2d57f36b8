//go:build !linux

package cpuinfo

import "github.com/egandro/go-affinity/pkg/affinity"

// detectTopologySystem reports GetCoreNum CPUs on a single socket. There is no portable
// source for package and core ids outside Linux.
func detectTopologySystem() ([]CoreInfo, error) {
	n := affinity.GetCoreNum()
	cores := make([]CoreInfo, n)
	for i := range cores {
		cores[i] = CoreInfo{CPU: i, Socket: 0, Core: i}
	}
	return cores, nil
}
