// Package affinity queries and sets the CPU-core affinity of the calling OS thread.
//
// The same calls work on Linux (sched_setaffinity), Windows (SetThreadAffinityMask and
// friends) and macOS (Mach THREAD_AFFINITY_POLICY). The driver is chosen at build time;
// other platforms do not build, so an affinity request is never silently dropped.
//
// Thread affinity belongs to the OS thread, not to the goroutine. Lock the goroutine with
// runtime.LockOSThread before setting and reading it, or use PinThread:
//
//	restore, err := affinity.PinThread([]int{0, 2, 4, 6})
//	if err != nil {
//		return err
//	}
//	defer restore()
//
// On macOS the values are affinity tags: threads sharing a tag are scheduled close to each
// other, but a tag never names a core and the kernel may ignore it.
package affinity
