//go:build windows

package affinity

import (
	"math/bits"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

const codeFormat = "error 0x%x"

// maskWidth is the number of cores a Windows affinity mask (a machine word) can hold.
const maskWidth = bits.UintSize

var (
	modkernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask  = modkernel32.NewProc("SetThreadAffinityMask")
	procSetProcessAffinityMask = modkernel32.NewProc("SetProcessAffinityMask")
	procGetProcessAffinityMask = modkernel32.NewProc("GetProcessAffinityMask")
)

type windowsDriver struct{}

func newDriver() Driver {
	return windowsDriver{}
}

var processDriver ProcessDriver = windowsDriver{}

// SetProcessAffinity binds the whole process to the given cores. Child processes created
// afterwards inherit the mask, and affinities previously set on single threads are replaced.
func SetProcessAffinity(cores []int) error {
	return processDriver.SetProcessAffinity(cores)
}

// GetProcessAffinity returns the cores the process is bound to, in ascending order.
func GetProcessAffinity() ([]int, error) {
	return processDriver.GetProcessAffinity()
}

func (windowsDriver) SetThreadAffinity(cores []int) error {
	if err := validateCores(opSetThreadAffinity, cores, maskWidth); err != nil {
		return err
	}
	_, err := setThreadAffinityMask(uintptr(encodeMask(cores)))
	return err
}

func (windowsDriver) GetThreadAffinity() ([]int, error) {
	mask, err := probeThreadMask(setThreadAffinityMask)
	if err != nil {
		return nil, err
	}
	return decodeMask(uint64(mask)), nil
}

func (windowsDriver) SetProcessAffinity(cores []int) error {
	if err := validateCores("SetProcessAffinity", cores, maskWidth); err != nil {
		return err
	}
	return setProcessAffinityMask(uintptr(encodeMask(cores)))
}

func (windowsDriver) GetProcessAffinity() ([]int, error) {
	mask, err := getProcessAffinityMask()
	if err != nil {
		return nil, err
	}
	return decodeMask(uint64(mask)), nil
}

// GetCoreNum counts the logical processors of the host across all processor groups. It does
// not change when the process affinity is narrowed.
func (windowsDriver) GetCoreNum() int {
	if n := windows.GetActiveProcessorCount(windows.ALL_PROCESSOR_GROUPS); n > 0 {
		return int(n)
	}
	return runtime.NumCPU()
}

// setThreadAffinityMask returns the previous mask of the calling thread.
func setThreadAffinityMask(mask uintptr) (uintptr, error) {
	prev, _, e1 := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prev == 0 {
		return 0, osError("SetThreadAffinityMask", e1)
	}
	return prev, nil
}

func setProcessAffinityMask(mask uintptr) error {
	r1, _, e1 := procSetProcessAffinityMask.Call(uintptr(windows.CurrentProcess()), mask)
	if r1 == 0 {
		return osError("SetProcessAffinityMask", e1)
	}
	return nil
}

func getProcessAffinityMask() (uintptr, error) {
	var processMask, systemMask uintptr
	r1, _, e1 := procGetProcessAffinityMask.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(unsafe.Pointer(&processMask)),
		uintptr(unsafe.Pointer(&systemMask)),
	)
	if r1 == 0 {
		return 0, osError("GetProcessAffinityMask", e1)
	}
	return processMask, nil
}
