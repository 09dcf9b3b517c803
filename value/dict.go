package value

import (
	"bytes"

	"github.com/phucvin/fleece/errs"
	"github.com/phucvin/fleece/format"
)

// Dict is a parsed view over a Dict value's header. Entries are stored
// key-slot/value-slot pairs, sorted by key bytes, so Get resolves via
// binary search touching O(log n) entries.
type Dict struct {
	buf     []byte
	wide    bool
	count   int
	dataPos int
}

// AsDict parses v as a Dict header. Returns ErrWrongKind if v is not a
// dict.
func (v Value) AsDict() (Dict, error) {
	if v.IsAbsent() || format.TagOf(v.buf[v.pos]) != format.TagDict {
		return Dict{}, errs.ErrWrongKind
	}

	if v.pos+2 > len(v.buf) {
		return Dict{}, errs.ErrTruncatedBuffer
	}

	wide, field := format.DecodeCollectionHeader(v.buf[v.pos], v.buf[v.pos+1])
	dataPos := v.pos + 2
	count := field

	if format.CollectionCountOverflows(field) {
		n, nBytes, err := format.ReadVarint(v.buf, dataPos)
		if err != nil {
			return Dict{}, err
		}

		count = int(n)
		dataPos += nBytes
	}

	return Dict{buf: v.buf, wide: wide, count: count, dataPos: dataPos}, nil
}

// Len returns the number of entries in the dict.
func (d Dict) Len() int {
	return d.count
}

func (d Dict) entryPos(i int) int {
	slotSize := format.SlotSize(d.wide)

	return d.dataPos + i*2*slotSize
}

// keyBytesAt resolves and reads the raw key bytes of entry i without
// allocating a string.
func (d Dict) keyBytesAt(i int) ([]byte, error) {
	keySlotPos := d.entryPos(i)

	kv, err := newSlotValue(d.buf, keySlotPos, d.wide)
	if err != nil {
		return nil, err
	}

	return kv.rawBytes()
}

// KeyAt returns the key of entry i as a string.
func (d Dict) KeyAt(i int) string {
	b, err := d.keyBytesAt(i)
	if err != nil {
		return ""
	}

	return string(b)
}

// ValueAt returns the value of entry i.
func (d Dict) ValueAt(i int) Value {
	slotSize := format.SlotSize(d.wide)
	valueSlotPos := d.entryPos(i) + slotSize

	v, err := newSlotValue(d.buf, valueSlotPos, d.wide)
	if err != nil {
		return Value{}
	}

	return v
}

// Get looks up key by binary search over the sorted entries, touching
// O(log n) entries of the buffer. Returns Absent (nil error) on a
// missing key; a non-nil error indicates a malformed buffer.
func (d Dict) Get(key string) (Value, error) {
	keyBytes := []byte(key)

	lo, hi := 0, d.count
	for lo < hi {
		mid := (lo + hi) / 2

		probe, err := d.keyBytesAt(mid)
		if err != nil {
			return Value{}, err
		}

		switch bytes.Compare(probe, keyBytes) {
		case 0:
			return d.valueAtChecked(mid)
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}

	return Value{}, nil
}

func (d Dict) valueAtChecked(i int) (Value, error) {
	slotSize := format.SlotSize(d.wide)
	valueSlotPos := d.entryPos(i) + slotSize

	return newSlotValue(d.buf, valueSlotPos, d.wide)
}

// MustGet is Get without the error return, for callers that trust the
// document; it returns Absent on any decode failure.
func (d Dict) MustGet(key string) Value {
	v, err := d.Get(key)
	if err != nil {
		return Value{}
	}

	return v
}

// Keys returns every key in sorted order.
func (d Dict) Keys() []string {
	out := make([]string, d.count)
	for i := range out {
		out[i] = d.KeyAt(i)
	}

	return out
}
