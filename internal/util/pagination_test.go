package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		wantFrom   int
		wantLimit  int
	}{
		{name: "defaults", page: 0, size: 0, wantFrom: 0, wantLimit: 10},
		{name: "second page", page: 2, size: 10, wantFrom: 10, wantLimit: 10},
		{name: "negative page", page: -3, size: 5, wantFrom: 0, wantLimit: 5},
		{name: "size clamped", page: 3, size: 500, wantFrom: 200, wantLimit: 100},
		{name: "huge page clamped", page: math.MaxInt, size: 100, wantFrom: (MaxPage - 1) * 100, wantLimit: 100},
		{name: "huge page small size", page: math.MaxInt/10 + 2, size: 10, wantFrom: (MaxPage - 1) * 10, wantLimit: 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNormalize_OffsetNeverNegative(t *testing.T) {
	t.Parallel()

	for _, page := range []int{math.MaxInt, math.MaxInt / 10, MaxPage + 1} {
		for _, size := range []int{1, 10, MaxPageSize} {
			from, _ := Calculate(page, size)
			assert.GreaterOrEqual(t, from, 0)
		}
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 2, TotalPages(20, 10))
	assert.Equal(t, 1, TotalPages(1, 100))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
	assert.Equal(t, -1, ParseIntDefault("-1", 7))
}
