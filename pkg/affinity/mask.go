package affinity

import "math"

const opSetThreadAffinity = "SetThreadAffinity"

// validateCores rejects cores that do not fit in a mask of width bits.
func validateCores(op string, cores []int, width int) error {
	for _, c := range cores {
		if c < 0 || c >= width {
			return validationError(op, ErrCoreRange, "core %d out of range [0, %d)", c, width)
		}
	}
	return nil
}

// encodeMask maps core i to bit i. Cores must have been validated against 64.
func encodeMask(cores []int) uint64 {
	var mask uint64
	for _, c := range cores {
		mask |= 1 << uint(c)
	}
	return mask
}

// decodeMask returns the positions of the set bits, least significant first.
func decodeMask(mask uint64) []int {
	cores := make([]int, 0, 8)
	for i := 0; mask != 0; i++ {
		if mask&1 != 0 {
			cores = append(cores, i)
		}
		mask >>= 1
	}
	return cores
}

// singleTag returns the only element of tags.
func singleTag(op string, tags []int) (int, error) {
	if len(tags) != 1 {
		return 0, validationError(op, ErrTagCount, "expected exactly one tag, got %d", len(tags))
	}
	if tags[0] < math.MinInt32 || tags[0] > math.MaxInt32 {
		return 0, validationError(op, ErrCoreRange, "tag %d does not fit in 32 bits", tags[0])
	}
	return tags[0], nil
}
