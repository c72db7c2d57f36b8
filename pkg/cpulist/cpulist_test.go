package cpulist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected []int
		wantErr  bool
	}{
		{"", []int{}, false},
		{"   ", []int{}, false},
		{"0", []int{0}, false},
		{"0,2,4,6", []int{0, 2, 4, 6}, false},
		{"0-3", []int{0, 1, 2, 3}, false},
		{"0-3,8,10-11", []int{0, 1, 2, 3, 8, 10, 11}, false},
		{"6,4,2,0", []int{0, 2, 4, 6}, false},
		{"1,1,0-2", []int{0, 1, 2}, false},
		{" 1 , 3 - 4 ", []int{1, 3, 4}, false},
		{"3-1", nil, true},
		{"-1", nil, true},
		{"a", nil, true},
		{"1,,2", nil, true},
		{"1-", nil, true},
		{"0-70000", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		cores    []int
		expected string
	}{
		{nil, ""},
		{[]int{0}, "0"},
		{[]int{0, 2, 4, 6}, "0,2,4,6"},
		{[]int{0, 1, 2, 3}, "0-3"},
		{[]int{11, 10, 8, 3, 2, 1, 0}, "0-3,8,10-11"},
		{[]int{5, 5, 6}, "5-6"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.cores))
		})
	}
}

func TestFormat_DoesNotModifyInput(t *testing.T) {
	cores := []int{3, 1, 2}
	_ = Format(cores)
	assert.Equal(t, []int{3, 1, 2}, cores)
}
