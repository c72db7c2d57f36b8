//go:build linux

package cpuinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/egandro/go-affinity/pkg/cpulist"
)

const sysfsCPUDir = "/sys/devices/system/cpu"

func detectTopologySystem() ([]CoreInfo, error) {
	return detectTopology(sysfsCPUDir)
}

// detectTopology reads the sysfs tree rooted at dir. CPUs missing from the online list
// are left out, as they cannot be pinned.
func detectTopology(dir string) ([]CoreInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "cpu[0-9]*"))
	if err != nil {
		return nil, err
	}

	online := map[int]bool{}
	if data, err := os.ReadFile(filepath.Join(dir, "online")); err == nil {
		cpus, err := cpulist.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse online cpus: %w", err)
		}
		for _, c := range cpus {
			online[c] = true
		}
	}

	var cores []CoreInfo
	for _, path := range matches {
		// Extract CPU ID from path (e.g. /sys/devices/system/cpu/cpu0 -> 0)
		i, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "cpu"))
		if err != nil {
			continue
		}
		if len(online) > 0 && !online[i] {
			continue
		}

		socketID, err := readSysFSInt(filepath.Join(path, "topology", "physical_package_id"))
		if err != nil {
			// Skip offline/inaccessible CPUs
			continue
		}
		coreID, err := readSysFSInt(filepath.Join(path, "topology", "core_id"))
		if err != nil {
			coreID = -1
		}

		cores = append(cores, CoreInfo{CPU: i, Socket: socketID, Core: coreID})
	}

	// Ensure deterministic order
	sort.Slice(cores, func(i, j int) bool {
		return cores[i].CPU < cores[j].CPU
	})
	return cores, nil
}

func readSysFSInt(path string) (int, error) {
	// #nosec G304 -- path is built from the sysfs cpu directory
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
