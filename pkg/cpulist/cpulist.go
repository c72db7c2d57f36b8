// Package cpulist reads and writes the Linux cpulist notation ("0-3,8,10-11"), the format
// used by taskset -c and /sys/devices/system/cpu/online.
package cpulist

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// MaxCPU bounds the core numbers Parse accepts, so that a typo like "0-99999999" cannot
// allocate a huge slice.
const MaxCPU = 1 << 16

// Parse returns the cores listed in s in ascending order without duplicates.
// Whitespace around entries is ignored and an empty string yields no cores.
func Parse(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}

	var cores []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty entry in cpu list %q", s)
		}

		first, last, err := parseRange(part)
		if err != nil {
			return nil, fmt.Errorf("invalid cpu list %q: %w", s, err)
		}
		for c := first; c <= last; c++ {
			cores = append(cores, c)
		}
	}

	return normalize(cores), nil
}

func parseRange(part string) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")
	first, err := parseCPU(from)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return first, first, nil
	}
	last, err := parseCPU(to)
	if err != nil {
		return 0, 0, err
	}
	if last < first {
		return 0, 0, fmt.Errorf("range %q is descending", part)
	}
	return first, last, nil
}

func parseCPU(s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 31)
	if err != nil {
		return 0, fmt.Errorf("bad cpu number %q", s)
	}
	if n >= MaxCPU {
		return 0, fmt.Errorf("cpu %d exceeds %d", n, MaxCPU-1)
	}
	return int(n), nil
}

// Format writes cores in cpulist notation, collapsing consecutive runs into ranges.
func Format(cores []int) string {
	cores = normalize(cores)

	var b strings.Builder
	for i := 0; i < len(cores); {
		j := i
		for j+1 < len(cores) && cores[j+1] == cores[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(cores[i]))
		if j > i {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(cores[j]))
		}
		i = j + 1
	}
	return b.String()
}

func normalize(cores []int) []int {
	out := lo.Uniq(cores)
	sort.Ints(out)
	return out
}
