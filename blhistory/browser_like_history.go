package blhistory

import (
	"github.com/dimonomid/memegen/util/capped"
)

// DefaultMaxLen is used when Params.MaxLen is not positive.
const DefaultMaxLen = 50

// BLHistory is a browser-like history: we can add more items to the history;
// we can go back and forth; when we're a few items back and we add a new item,
// a new item is added at this place in the history and all the previously
// existing newer items are dropped; there is no persistence.
//
// There is always at least one item: the history is seeded with the initial
// one, and the oldest items are dropped once there are more than MaxLen.
//
// BLHistory is not safe for concurrent use; it's meant to be owned by the UI
// event loop.
type BLHistory[T any] struct {
	params Params

	items []T

	curIdx int
}

type Params struct {
	// MaxLen is the max number of items kept; DefaultMaxLen if zero.
	MaxLen int
}

func New[T any](initial T, params Params) *BLHistory[T] {
	if params.MaxLen <= 0 {
		params.MaxLen = DefaultMaxLen
	}

	return &BLHistory[T]{
		params: params,
		items:  []T{initial},
	}
}

// Current returns the item under the cursor.
func (h *BLHistory[T]) Current() T {
	return h.items[h.curIdx]
}

// Push drops everything after the cursor, appends the item and moves the
// cursor to it. If that makes the history longer than MaxLen, the oldest
// items are dropped.
func (h *BLHistory[T]) Push(v T) {
	items := h.items[:h.curIdx+1:h.curIdx+1]
	items = append(items, v)

	h.items, _ = capped.KeepLast(items, h.params.MaxLen)
	h.curIdx = len(h.items) - 1
}

// Undo moves the cursor one item back, and returns whether it has moved.
// At the oldest item it's a no-op.
func (h *BLHistory[T]) Undo() bool {
	if !h.CanUndo() {
		return false
	}

	h.curIdx--
	return true
}

// Redo moves the cursor one item forward, and returns whether it has moved.
// At the newest item it's a no-op.
func (h *BLHistory[T]) Redo() bool {
	if !h.CanRedo() {
		return false
	}

	h.curIdx++
	return true
}

func (h *BLHistory[T]) CanUndo() bool {
	return h.curIdx > 0
}

func (h *BLHistory[T]) CanRedo() bool {
	return h.curIdx < len(h.items)-1
}

// Len returns the number of items, including the ones after the cursor.
func (h *BLHistory[T]) Len() int {
	return len(h.items)
}

// Cursor returns the index of the current item.
func (h *BLHistory[T]) Cursor() int {
	return h.curIdx
}
