package affinity

import (
	"math"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMask(t *testing.T) {
	tests := []struct {
		name     string
		mask     uint64
		expected []int
	}{
		{"empty", 0, []int{}},
		{"bit ordering", 0b1010, []int{1, 3}},
		{"first core", 1, []int{0}},
		{"even cores", 0b01010101, []int{0, 2, 4, 6}},
		{"highest bit", 1 << 63, []int{63}},
		{"all bits", math.MaxUint64, func() []int {
			all := make([]int, 64)
			for i := range all {
				all[i] = i
			}
			return all
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeMask(tt.mask))
		})
	}
}

func TestEncodeMask(t *testing.T) {
	assert.Equal(t, uint64(0), encodeMask(nil))
	assert.Equal(t, uint64(0b1010), encodeMask([]int{3, 1}))
	assert.Equal(t, uint64(0b1010), encodeMask([]int{1, 3, 3}), "duplicates collapse")
	assert.Equal(t, uint64(1<<63), encodeMask([]int{63}))
}

func TestValidateCores(t *testing.T) {
	tests := []struct {
		name  string
		cores []int
		width int
		valid bool
	}{
		{"empty", nil, 64, true},
		{"in range", []int{0, 2, 4, 6}, 64, true},
		{"last bit", []int{63}, 64, true},
		{"width", []int{64}, 64, false},
		{"negative", []int{-1}, 64, false},
		{"linux cpuset", []int{1023}, 1024, true},
		{"beyond linux cpuset", []int{0, 1024}, 1024, false},
		{"32-bit windows last bit", []int{31}, 32, true},
		{"beyond 32-bit windows mask", []int{32}, 32, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCores(opSetThreadAffinity, tt.cores, tt.width)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrCoreRange)
		})
	}
}

func TestSingleTag(t *testing.T) {
	tag, err := singleTag(opSetThreadAffinity, []int{42})
	assert.NoError(t, err)
	assert.Equal(t, 42, tag)

	for _, tags := range [][]int{nil, {}, {1, 2}, {1, 2, 3}} {
		_, err := singleTag(opSetThreadAffinity, tags)
		assert.ErrorIs(t, err, ErrTagCount, "tags %v", tags)
	}
}

func TestSingleTag_BeyondInt32(t *testing.T) {
	if bits.UintSize == 32 {
		t.Skip("int cannot hold a tag wider than 32 bits")
	}
	tooWide := int64(math.MaxInt32) + 1

	_, err := singleTag(opSetThreadAffinity, []int{int(tooWide)})
	assert.ErrorIs(t, err, ErrCoreRange)
}
