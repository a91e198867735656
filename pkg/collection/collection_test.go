package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukaanlabs/dukaan/pkg/collection"
)

func TestMapFilterFirst(t *testing.T) {
	nums := []int{1, 2, 3, 4}

	doubled := collection.Map(nums, func(n int) int { return n * 2 })
	assert.Equal(t, []int{2, 4, 6, 8}, doubled)

	even := collection.Filter(nums, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)

	first, ok := collection.First(nums, func(n int) bool { return n > 2 })
	assert.True(t, ok)
	assert.Equal(t, 3, first)

	_, ok = collection.First(nums, func(n int) bool { return n > 10 })
	assert.False(t, ok)

	assert.True(t, collection.Contains(nums, func(n int) bool { return n == 4 }))
}

func TestUnique(t *testing.T) {
	cats := []string{"snacks", "soap", "snacks", "", "soap"}
	assert.Equal(t, []string{"snacks", "soap", ""}, collection.Unique(cats))
}

func TestSumBy(t *testing.T) {
	type line struct{ qty int }
	lines := []line{{2}, {3}, {0}}
	assert.Equal(t, 5, collection.SumBy(lines, func(l line) int { return l.qty }))
}
