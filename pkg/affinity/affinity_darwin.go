//go:build darwin

package affinity

/*
#include <mach/mach.h>
#include <mach/thread_policy.h>

static kern_return_t set_affinity_tag(integer_t tag) {
	thread_affinity_policy_data_t policy = { tag };
	mach_port_t thread = mach_thread_self();
	kern_return_t kr = thread_policy_set(thread, THREAD_AFFINITY_POLICY,
		(thread_policy_t)&policy, THREAD_AFFINITY_POLICY_COUNT);
	mach_port_deallocate(mach_task_self(), thread);
	return kr;
}

// The tag stays -1 when the kernel has nothing to report.
static kern_return_t get_affinity_tag(integer_t *tag) {
	thread_affinity_policy_data_t policy = { -1 };
	mach_msg_type_number_t count = THREAD_AFFINITY_POLICY_COUNT;
	boolean_t get_default = FALSE;
	mach_port_t thread = mach_thread_self();
	kern_return_t kr = thread_policy_get(thread, THREAD_AFFINITY_POLICY,
		(thread_policy_t)&policy, &count, &get_default);
	mach_port_deallocate(mach_task_self(), thread);
	*tag = policy.affinity_tag;
	return kr;
}
*/
import "C"

import (
	"runtime"

	"golang.org/x/sys/unix"
)

const codeFormat = "kern_return_t %d"

type darwinDriver struct{}

func newDriver() Driver {
	return darwinDriver{}
}

// SetThreadAffinity takes exactly one affinity tag.
func (darwinDriver) SetThreadAffinity(tags []int) error {
	tag, err := singleTag(opSetThreadAffinity, tags)
	if err != nil {
		return err
	}
	return threadPolicySet(tag)
}

// GetThreadAffinity returns the current tag as a single element.
func (darwinDriver) GetThreadAffinity() ([]int, error) {
	tag, err := threadPolicyGet()
	if err != nil {
		return nil, err
	}
	return []int{tag}, nil
}

func (darwinDriver) GetCoreNum() int {
	n, err := unix.SysctlUint32("hw.logicalcpu")
	if err != nil || n == 0 {
		return runtime.NumCPU()
	}
	return int(n)
}

func threadPolicySet(tag int) error {
	if kr := C.set_affinity_tag(C.integer_t(tag)); kr != C.KERN_SUCCESS {
		return &Error{Op: "thread_policy_set", Code: int(kr)}
	}
	return nil
}

func threadPolicyGet() (int, error) {
	var tag C.integer_t
	if kr := C.get_affinity_tag(&tag); kr != C.KERN_SUCCESS {
		return 0, &Error{Op: "thread_policy_get", Code: int(kr)}
	}
	return int(tag), nil
}
