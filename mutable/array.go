package mutable

import (
	"github.com/phucvin/fleece/format"
	"github.com/phucvin/fleece/value"
)

// Array is a copy-on-write overlay over an array: the source is fully
// materialized into an in-memory slice of elements (each initially a
// value.Value reader handle) on construction, after which index
// get/set/push/pop/splice operate on that slice directly. It satisfies
// the encoder's arrayLike interface.
type Array struct {
	elems []any
}

// NewArray creates an empty Array with no source elements.
func NewArray() *Array {
	return &Array{}
}

// FromArray materializes a reader array's elements into a new Array.
func FromArray(a value.Array) *Array {
	elems := make([]any, a.Len())
	for i := range elems {
		elems[i] = a.MustGet(i)
	}

	return &Array{elems: elems}
}

// ArrayFromValue parses v as an array and wraps it, per FromArray.
func ArrayFromValue(v value.Value) (*Array, error) {
	a, err := v.AsArray()
	if err != nil {
		return nil, err
	}

	return FromArray(a), nil
}

// Len returns the current element count.
func (a *Array) Len() int {
	return len(a.elems)
}

// Get returns the element at i, or nil if i is out of bounds.
func (a *Array) Get(i int) any {
	if i < 0 || i >= len(a.elems) {
		return nil
	}

	return a.elems[i]
}

// Set replaces the element at i. Out-of-bounds indices are ignored.
func (a *Array) Set(i int, v any) {
	if i < 0 || i >= len(a.elems) {
		return
	}

	a.elems[i] = v
}

// Push appends v to the end of the array.
func (a *Array) Push(v any) {
	a.elems = append(a.elems, v)
}

// Pop removes and returns the last element, or nil if the array is empty.
func (a *Array) Pop() any {
	if len(a.elems) == 0 {
		return nil
	}

	last := a.elems[len(a.elems)-1]
	a.elems = a.elems[:len(a.elems)-1]

	return last
}

// Splice removes count elements starting at start and inserts repl in
// their place, returning the removed elements. start and count are
// clamped to the current bounds.
func (a *Array) Splice(start, count int, repl ...any) []any {
	if start < 0 {
		start = 0
	}

	if start > len(a.elems) {
		start = len(a.elems)
	}

	if count < 0 {
		count = 0
	}

	end := start + count
	if end > len(a.elems) {
		end = len(a.elems)
	}

	removed := append([]any(nil), a.elems[start:end]...)

	rest := append([]any(nil), a.elems[end:]...)
	a.elems = append(a.elems[:start:start], repl...)
	a.elems = append(a.elems, rest...)

	return removed
}

// GetMutable promotes the child dict or array at index i to its own
// overlay, writing it back in place so subsequent mutations through the
// returned handle are visible to this Array. Returns (nil, nil) if i is
// out of bounds. For a dict or array element the result is a *Dict or an
// *Array; any other element is returned unchanged and is not promoted.
func (a *Array) GetMutable(i int) (any, error) {
	if i < 0 || i >= len(a.elems) {
		return nil, nil
	}

	switch existing := a.elems[i].(type) {
	case *Dict, *Array:
		return existing, nil
	case value.Value:
		if existing.Kind() != format.KindDict && existing.Kind() != format.KindArray {
			return existing, nil
		}

		child, err := promoteValue(existing)
		if err != nil {
			return nil, err
		}

		a.elems[i] = child

		return child, nil
	default:
		return existing, nil
	}
}
