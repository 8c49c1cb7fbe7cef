package capped

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeepLast(t *testing.T) {
	type testCase struct {
		items []int
		max   int

		want        []int
		wantDropped int
	}

	testCases := []testCase{
		{items: nil, max: 3, want: nil},
		{items: []int{1, 2}, max: 3, want: []int{1, 2}},
		{items: []int{1, 2, 3}, max: 3, want: []int{1, 2, 3}},
		{items: []int{1, 2, 3, 4, 5}, max: 3, want: []int{3, 4, 5}, wantDropped: 2},
		{items: []int{1, 2, 3}, max: 0, want: []int{1, 2, 3}},
	}

	for i, tc := range testCases {
		got, dropped := KeepLast(tc.items, tc.max)
		assert.Equal(t, tc.want, got, "testCase #%d", i)
		assert.Equal(t, tc.wantDropped, dropped, "testCase #%d", i)
	}
}

func TestPrepend(t *testing.T) {
	var items []string

	items = Prepend(items, "a", 2)
	assert.Equal(t, []string{"a"}, items)

	items = Prepend(items, "b", 2)
	assert.Equal(t, []string{"b", "a"}, items)

	items = Prepend(items, "c", 2)
	assert.Equal(t, []string{"c", "b"}, items)
}
