// Package capped has helpers for slices which must never grow beyond a fixed
// number of items: both the undo/redo buffer and the durable histories are
// built on top of them.
package capped

// KeepLast drops items from the front of the slice until at most max items
// are left, and returns the result along with the number of dropped items.
// If max is not positive, the slice is returned unchanged.
func KeepLast[T any](items []T, max int) ([]T, int) {
	if max <= 0 || len(items) <= max {
		return items, 0
	}

	dropped := len(items) - max

	// Copy into a fresh slice, so that the dropped items don't stay reachable
	// via the underlying array.
	ret := make([]T, max)
	copy(ret, items[dropped:])

	return ret, dropped
}

// KeepFirst is like KeepLast, but drops items from the back.
func KeepFirst[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}

	return items[:max]
}

// Prepend returns a new slice with v as the first item, followed by items,
// truncated to max items.
func Prepend[T any](items []T, v T, max int) []T {
	ret := make([]T, 0, len(items)+1)
	ret = append(ret, v)
	ret = append(ret, items...)

	return KeepFirst(ret, max)
}
