//go:build linux

package affinity

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

const codeFormat = "errno %d"

// cpuSetSize is the number of cores a unix.CPUSet can hold.
const cpuSetSize = int(unsafe.Sizeof(unix.CPUSet{})) * 8

type linuxDriver struct{}

func newDriver() Driver {
	return linuxDriver{}
}

func (linuxDriver) SetThreadAffinity(cores []int) error {
	if err := validateCores(opSetThreadAffinity, cores, cpuSetSize); err != nil {
		return err
	}

	var set unix.CPUSet
	set.Zero()
	for _, c := range cores {
		set.Set(c)
	}
	return schedSetaffinity(&set)
}

func (linuxDriver) GetThreadAffinity() ([]int, error) {
	var set unix.CPUSet
	if err := schedGetaffinity(0, &set); err != nil {
		return nil, err
	}

	cores := make([]int, 0, set.Count())
	for i := 0; i < cpuSetSize; i++ {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}

// GetCoreNum counts the cores in the process affinity mask. The main thread's mask stands in
// for the process, as the kernel has no process-wide mask.
func (linuxDriver) GetCoreNum() int {
	var set unix.CPUSet
	if err := schedGetaffinity(unix.Getpid(), &set); err != nil {
		return runtime.NumCPU()
	}
	if n := set.Count(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// schedSetaffinity wraps sched_setaffinity for the calling thread.
func schedSetaffinity(set *unix.CPUSet) error {
	if err := unix.SchedSetaffinity(0, set); err != nil {
		return osError("sched_setaffinity", err)
	}
	return nil
}

// schedGetaffinity wraps sched_getaffinity. pid 0 is the calling thread.
func schedGetaffinity(pid int, set *unix.CPUSet) error {
	if err := unix.SchedGetaffinity(pid, set); err != nil {
		return osError("sched_getaffinity", err)
	}
	return nil
}
