package blhistory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testCase struct {
	push string
	undo bool
	redo bool

	wantMoved bool
	want      string
}

func TestBLHistory(t *testing.T) {
	testCases := []testCase{
		{undo: true, want: "item 0"},
		{redo: true, want: "item 0"},
		{push: "item 1", want: "item 1"},
		{undo: true, wantMoved: true, want: "item 0"},
		{undo: true, want: "item 0"},
		{redo: true, wantMoved: true, want: "item 1"},
		{redo: true, want: "item 1"},
		{push: "item 2", want: "item 2"},
		{push: "item 3", want: "item 3"},
		{undo: true, wantMoved: true, want: "item 2"},
		{undo: true, wantMoved: true, want: "item 1"},
		{redo: true, wantMoved: true, want: "item 2"},
		{push: "item 10", want: "item 10"},
		{redo: true, want: "item 10"},
		{undo: true, wantMoved: true, want: "item 2"},
		{undo: true, wantMoved: true, want: "item 1"},
		{undo: true, wantMoved: true, want: "item 0"},
		{undo: true, want: "item 0"},
		{redo: true, wantMoved: true, want: "item 1"},
		{redo: true, wantMoved: true, want: "item 2"},
		{redo: true, wantMoved: true, want: "item 10"},
		{redo: true, want: "item 10"},
	}

	h := New("item 0", Params{})

	for i, tc := range testCases {
		switch {
		case tc.push != "":
			h.Push(tc.push)
		case tc.undo:
			assert.Equal(t, tc.wantMoved, h.Undo(), "testCase #%d (%+v)", i, tc)
		case tc.redo:
			assert.Equal(t, tc.wantMoved, h.Redo(), "testCase #%d (%+v)", i, tc)
		}

		assert.Equal(t, tc.want, h.Current(), "testCase #%d (%+v)", i, tc)
	}
}

func TestBLHistoryCapacity(t *testing.T) {
	h := New(0, Params{})

	for i := 1; i <= 120; i++ {
		h.Push(i)

		assert.LessOrEqual(t, h.Len(), DefaultMaxLen)
		assert.Equal(t, i, h.Current())
		assert.Equal(t, h.Len()-1, h.Cursor())
		assert.False(t, h.CanRedo())
	}

	// Only the last 50 items survive: 71..120.
	for i := 0; i < DefaultMaxLen-1; i++ {
		assert.True(t, h.Undo())
	}
	assert.False(t, h.CanUndo())
	assert.Equal(t, 71, h.Current())
}

func TestBLHistoryPushAfterUndoAtCapacity(t *testing.T) {
	h := New(0, Params{MaxLen: 5})
	for i := 1; i <= 10; i++ {
		h.Push(i)
	}

	h.Undo()
	h.Undo()
	assert.Equal(t, 8, h.Current())

	h.Push(100)
	assert.Equal(t, 100, h.Current())
	assert.Equal(t, 4, h.Len())
	assert.False(t, h.CanRedo())

	h.Undo()
	assert.Equal(t, 8, h.Current())
}

func TestBLHistoryBranchDiscarded(t *testing.T) {
	h := New("initial", Params{})

	h.Push("a")
	h.Push("b")
	h.Undo()
	h.Push("c")

	assert.False(t, h.CanRedo())
	assert.False(t, h.Redo())
	assert.Equal(t, "c", h.Current())

	h.Undo()
	assert.Equal(t, "a", h.Current())
}

func TestBLHistoryPushUndoRedo(t *testing.T) {
	type doc struct {
		Top   string
		Scale float64
	}

	initial := doc{Top: "one", Scale: 1}
	h := New(initial, Params{})

	d := doc{Top: "two", Scale: 2}
	h.Push(d)

	h.Undo()
	assert.Equal(t, initial, h.Current())

	h.Redo()
	assert.Equal(t, d, h.Current())
}

func ExampleBLHistory() {
	h := New("a", Params{MaxLen: 3})
	h.Push("b")
	h.Push("c")
	h.Push("d")
	h.Undo()

	fmt.Println(h.Current(), h.Len(), h.CanUndo(), h.CanRedo())
	// Output: c 3 true true
}
