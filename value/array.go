package value

import (
	"github.com/phucvin/fleece/errs"
	"github.com/phucvin/fleece/format"
)

// Array is a parsed view over an Array value's header, giving O(1)
// random access to its slots without decoding the whole collection.
type Array struct {
	buf     []byte
	wide    bool
	count   int
	dataPos int
}

// AsArray parses v as an Array header. Returns ErrWrongKind if v is not
// an array.
func (v Value) AsArray() (Array, error) {
	if v.IsAbsent() || format.TagOf(v.buf[v.pos]) != format.TagArray {
		return Array{}, errs.ErrWrongKind
	}

	if v.pos+2 > len(v.buf) {
		return Array{}, errs.ErrTruncatedBuffer
	}

	wide, field := format.DecodeCollectionHeader(v.buf[v.pos], v.buf[v.pos+1])
	dataPos := v.pos + 2
	count := field

	if format.CollectionCountOverflows(field) {
		n, nBytes, err := format.ReadVarint(v.buf, dataPos)
		if err != nil {
			return Array{}, err
		}

		count = int(n)
		dataPos += nBytes
	}

	return Array{buf: v.buf, wide: wide, count: count, dataPos: dataPos}, nil
}

// Len returns the number of elements in the array.
func (a Array) Len() int {
	return a.count
}

// Get returns the element at index i, or the Absent sentinel (with a nil
// error) if i is out of bounds. A non-nil error indicates a malformed
// buffer (e.g. a corrupt pointer), not a lookup miss.
func (a Array) Get(i int) (Value, error) {
	if i < 0 || i >= a.count {
		return Value{}, nil
	}

	slotSize := format.SlotSize(a.wide)
	slotPos := a.dataPos + i*slotSize

	return newSlotValue(a.buf, slotPos, a.wide)
}

// MustGet is Get without the error return, for callers that trust the
// document; it returns Absent on any decode failure.
func (a Array) MustGet(i int) Value {
	v, err := a.Get(i)
	if err != nil {
		return Value{}
	}

	return v
}

// All returns every element in order. Prefer Get for random access on
// large arrays; All is a convenience for iteration.
func (a Array) All() []Value {
	out := make([]Value, a.count)
	for i := range out {
		out[i] = a.MustGet(i)
	}

	return out
}
