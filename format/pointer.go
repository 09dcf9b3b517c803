package format

import "github.com/phucvin/fleece/errs"

// Pointer offsets are counted in 2-byte units, measured backward from the
// start of the slot that holds the pointer to the start of the target
// value.
const (
	// NarrowPointerSize is the width in bytes of a narrow pointer slot.
	NarrowPointerSize = 2
	// WidePointerSize is the width in bytes of a wide pointer slot.
	WidePointerSize = 4

	maxNarrowOffsetUnits = 1<<15 - 1 // 15-bit field
	maxWideOffsetUnits   = 1<<31 - 1 // 31-bit field

	// NarrowPointerReach is the largest backward byte distance a narrow
	// pointer can address: a 15-bit count of 2-byte units.
	NarrowPointerReach = maxNarrowOffsetUnits * 2
)

// ReadNarrowPointer reads the 15-bit big-endian-packed offset (in 2-byte
// units) of a narrow pointer slot at pos.
func ReadNarrowPointer(buf []byte, pos int) (uint32, error) {
	if pos < 0 || pos+NarrowPointerSize > len(buf) {
		return 0, errs.ErrTruncatedBuffer
	}

	b0, b1 := buf[pos], buf[pos+1]

	return uint32(b0&0x7F)<<8 | uint32(b1), nil
}

// ReadWidePointer reads the 31-bit big-endian-packed offset (in 2-byte
// units) of a wide pointer slot at pos.
func ReadWidePointer(buf []byte, pos int) (uint32, error) {
	if pos < 0 || pos+WidePointerSize > len(buf) {
		return 0, errs.ErrTruncatedBuffer
	}

	b0, b1, b2, b3 := buf[pos], buf[pos+1], buf[pos+2], buf[pos+3]

	return uint32(b0&0x7F)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3), nil
}

// ReadPointer reads a pointer slot's offset, choosing narrow or wide
// decoding according to wide.
func ReadPointer(buf []byte, pos int, wide bool) (uint32, error) {
	if wide {
		return ReadWidePointer(buf, pos)
	}

	return ReadNarrowPointer(buf, pos)
}

// PointerSize returns the byte width of a pointer slot for the given
// collection width.
func PointerSize(wide bool) int {
	if wide {
		return WidePointerSize
	}

	return NarrowPointerSize
}

// FitsNarrowPointer reports whether offsetUnits fits the 15-bit narrow
// pointer field.
func FitsNarrowPointer(offsetUnits uint32) bool {
	return offsetUnits <= maxNarrowOffsetUnits
}

// FitsWidePointer reports whether offsetUnits fits the 31-bit wide
// pointer field.
func FitsWidePointer(offsetUnits uint32) bool {
	return offsetUnits <= maxWideOffsetUnits
}

// WriteNarrowPointer writes a narrow pointer slot at buf[pos:pos+2].
func WriteNarrowPointer(buf []byte, pos int, offsetUnits uint32) {
	buf[pos] = PointerBit | byte(offsetUnits>>8)
	buf[pos+1] = byte(offsetUnits)
}

// WriteWidePointer writes a wide pointer slot at buf[pos:pos+4].
func WriteWidePointer(buf []byte, pos int, offsetUnits uint32) {
	buf[pos] = PointerBit | byte(offsetUnits>>24)
	buf[pos+1] = byte(offsetUnits >> 16)
	buf[pos+2] = byte(offsetUnits >> 8)
	buf[pos+3] = byte(offsetUnits)
}

// OffsetUnits computes the backward distance, in 2-byte units, from a
// slot at absolute position slotAbsPos to a value at absolute position
// targetAbsOffset. Both positions are absolute within the final
// concatenated document, including any base a delta is appended to.
func OffsetUnits(slotAbsPos, targetAbsOffset int64) uint32 {
	return uint32((slotAbsPos - targetAbsOffset) / 2)
}
