package value

import (
	"math"

	"github.com/phucvin/fleece/errs"
	"github.com/phucvin/fleece/format"
)

// maxPointerChain bounds the number of backward hops Value construction
// will follow before failing with ErrPointerChainTooDeep.
const maxPointerChain = 100

// Value is a lazy, immutable handle onto a position inside an encoded
// fleece buffer. Constructing a Value resolves any pointer chain at the
// given slot so that Kind/extractor calls always see a concrete header.
//
// Value borrows buf for its entire lifetime; it does not copy or mutate
// the underlying bytes.
type Value struct {
	buf []byte
	pos int
}

// IsAbsent reports whether v is the sentinel returned by a missing array
// index or dict key lookup, as distinct from an explicit JSON null.
func (v Value) IsAbsent() bool {
	return v.buf == nil
}

// Kind returns the coarse value kind at v's position.
func (v Value) Kind() format.Kind {
	if v.IsAbsent() {
		return format.KindNull
	}

	return format.KindOf(v.buf[v.pos])
}

// resolveSlot follows the pointer chain starting at a slot of the given
// width, returning the absolute position of the concrete value it
// ultimately refers to (or, if the slot held an inline value, the
// position of its 2 inline bytes: the slot itself when narrow, its low
// half when wide).
func resolveSlot(buf []byte, pos int, wide bool) (int, error) {
	for i := 0; i < maxPointerChain; i++ {
		if pos < 0 || pos >= len(buf) {
			return 0, errs.ErrTruncatedBuffer
		}

		b0 := buf[pos]
		if !format.IsPointer(b0) {
			if wide {
				// Immediate wide slots place the 2 inline bytes in the
				// low half (the trailing 2 bytes) of the 4-byte slot.
				return pos + 2, nil
			}

			return pos, nil
		}

		offsetUnits, err := format.ReadPointer(buf, pos, wide)
		if err != nil {
			return 0, err
		}

		if offsetUnits == 0 {
			return 0, errs.ErrInvalidPointerOffset
		}

		target := pos - int(offsetUnits)*2
		if target < 0 || target >= len(buf) {
			return 0, errs.ErrPointerOutOfRange
		}

		pos = target
		wide = false // the pointed-to value is self-contained, not a slot
	}

	return 0, errs.ErrPointerChainTooDeep
}

// newSlotValue constructs a Value for the slot at pos in a collection of
// the given width.
func newSlotValue(buf []byte, pos int, wide bool) (Value, error) {
	resolved, err := resolveSlot(buf, pos, wide)
	if err != nil {
		return Value{}, err
	}

	return Value{buf: buf, pos: resolved}, nil
}

// Root constructs the root Value of an encoded document. The last 2
// bytes of buf are the root slot; if it is a pointer whose target is
// itself a pointer, that target is a wide pointer emitted by the
// encoder's root double-indirection, and is resolved a
// second time using the wide pointer format.
func Root(buf []byte) (Value, error) {
	if len(buf) < 2 {
		return Value{}, errs.ErrTruncatedBuffer
	}

	rootSlotPos := len(buf) - 2

	b0 := buf[rootSlotPos]
	if !format.IsPointer(b0) {
		return Value{buf: buf, pos: rootSlotPos}, nil
	}

	offsetUnits, err := format.ReadNarrowPointer(buf, rootSlotPos)
	if err != nil {
		return Value{}, err
	}

	if offsetUnits == 0 {
		return Value{}, errs.ErrInvalidPointerOffset
	}

	target := rootSlotPos - int(offsetUnits)*2
	if target < 0 || target >= len(buf) {
		return Value{}, errs.ErrPointerOutOfRange
	}

	if !format.IsPointer(buf[target]) {
		return Value{buf: buf, pos: target}, nil
	}

	offsetUnits2, err := format.ReadWidePointer(buf, target)
	if err != nil {
		return Value{}, err
	}

	if offsetUnits2 == 0 {
		return Value{}, errs.ErrInvalidPointerOffset
	}

	target2 := target - int(offsetUnits2)*2
	if target2 < 0 || target2 >= len(buf) {
		return Value{}, errs.ErrPointerOutOfRange
	}

	return Value{buf: buf, pos: target2}, nil
}

// Buf returns the byte slice v was constructed over. Exposed for the
// encoder's delta-mode base-buffer identity check and for the mutable
// overlay; ordinary callers should use the typed accessors instead.
func (v Value) Buf() []byte {
	return v.buf
}

// Pos returns v's absolute byte position within Buf(). See Buf.
func (v Value) Pos() int {
	return v.pos
}

// IsInteger reports whether v's numeric value is stored as a SmallInt or
// LongInt, as opposed to a Float.
func (v Value) IsInteger() bool {
	if v.IsAbsent() {
		return false
	}

	t := format.TagOf(v.buf[v.pos])

	return t == format.TagSmallInt || t == format.TagLongInt
}

// IsNull reports whether v is the JSON-like null value.
func (v Value) IsNull() bool {
	return !v.IsAbsent() && v.buf[v.pos] == format.SpecialNull
}

// AsBool returns v's boolean value. Returns ErrWrongKind if v is not a
// boolean.
func (v Value) AsBool() (bool, error) {
	if v.IsAbsent() || v.Kind() != format.KindBool {
		return false, errs.ErrWrongKind
	}

	return v.buf[v.pos] == format.SpecialTrue, nil
}

// AsInt returns v's numeric value as an int64. Floats are truncated
// toward zero; use AsFloat for exact float extraction. Returns
// ErrIntegerOutOfRange if v is an unsigned long-int whose magnitude
// exceeds math.MaxInt64 — use AsUint for those.
func (v Value) AsInt() (int64, error) {
	if v.IsAbsent() {
		return 0, errs.ErrWrongKind
	}

	b0 := v.buf[v.pos]
	switch format.TagOf(b0) {
	case format.TagSmallInt:
		if v.pos+2 > len(v.buf) {
			return 0, errs.ErrTruncatedBuffer
		}

		return format.DecodeSmallInt(b0, v.buf[v.pos+1]), nil
	case format.TagLongInt:
		u, unsigned, err := v.decodeLongIntBits(b0)
		if err != nil {
			return 0, err
		}

		if unsigned && u > math.MaxInt64 {
			return 0, errs.ErrIntegerOutOfRange
		}

		return int64(u), nil
	case format.TagFloat:
		f, err := v.AsFloat()
		if err != nil {
			return 0, err
		}

		return int64(f), nil
	default:
		return 0, errs.ErrWrongKind
	}
}

// AsUint returns v's numeric value as a uint64. Returns
// ErrIntegerOutOfRange if v is a signed integer encoding a negative
// value, since negative values have no unsigned representation.
func (v Value) AsUint() (uint64, error) {
	if v.IsAbsent() {
		return 0, errs.ErrWrongKind
	}

	b0 := v.buf[v.pos]
	switch format.TagOf(b0) {
	case format.TagSmallInt:
		if v.pos+2 > len(v.buf) {
			return 0, errs.ErrTruncatedBuffer
		}

		n := format.DecodeSmallInt(b0, v.buf[v.pos+1])
		if n < 0 {
			return 0, errs.ErrIntegerOutOfRange
		}

		return uint64(n), nil
	case format.TagLongInt:
		u, unsigned, err := v.decodeLongIntBits(b0)
		if err != nil {
			return 0, err
		}

		if !unsigned && int64(u) < 0 {
			return 0, errs.ErrIntegerOutOfRange
		}

		return u, nil
	default:
		return 0, errs.ErrWrongKind
	}
}

// decodeLongIntBits reads the raw bits of a long-int value's payload,
// sign-extending to 64 bits when the format's u bit is clear. unsigned
// reports that bit back to the caller, so AsInt and AsUint can each
// apply their own range check instead of one silently wrapping the
// other's values.
func (v Value) decodeLongIntBits(b0 byte) (u uint64, unsigned bool, err error) {
	unsigned, size := format.DecodeLongIntHeader(b0)

	start := v.pos + 1
	if start+size > len(v.buf) {
		return 0, false, errs.ErrTruncatedBuffer
	}

	payload := v.buf[start : start+size]

	for i := size - 1; i >= 0; i-- {
		u = u<<8 | uint64(payload[i])
	}

	if !unsigned {
		// sign-extend from size*8 bits
		shift := uint(64 - size*8)
		u = uint64(int64(u<<shift) >> shift)
	}

	return u, unsigned, nil
}

// AsFloat returns v's numeric value as a float64, regardless of whether
// it was stored as an integer or a float.
func (v Value) AsFloat() (float64, error) {
	if v.IsAbsent() {
		return 0, errs.ErrWrongKind
	}

	b0 := v.buf[v.pos]
	switch format.TagOf(b0) {
	case format.TagFloat:
		size := format.FloatPayloadSize(b0)
		start := v.pos + 2
		if start+size > len(v.buf) {
			return 0, errs.ErrTruncatedBuffer
		}

		var u uint64
		for i := size - 1; i >= 0; i-- {
			u = u<<8 | uint64(v.buf[start+i])
		}

		if size == 4 {
			return float64(math.Float32frombits(uint32(u))), nil
		}

		return math.Float64frombits(u), nil
	case format.TagSmallInt, format.TagLongInt:
		i, err := v.AsInt()
		if err != nil {
			return 0, err
		}

		return float64(i), nil
	default:
		return 0, errs.ErrWrongKind
	}
}

// StrBytes returns v's string content as the raw UTF-8 bytes backing the
// buffer, without copying. The slice is only valid for as long as the
// underlying buffer is alive and must not be modified.
func (v Value) StrBytes() ([]byte, error) {
	if v.IsAbsent() || format.TagOf(v.buf[v.pos]) != format.TagString {
		return nil, errs.ErrWrongKind
	}

	return v.rawBytes()
}

// Str returns v's string content as a newly allocated Go string.
func (v Value) Str() (string, error) {
	b, err := v.StrBytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Binary returns v's binary content as the raw bytes backing the buffer,
// without copying.
func (v Value) Binary() ([]byte, error) {
	if v.IsAbsent() || format.TagOf(v.buf[v.pos]) != format.TagBinary {
		return nil, errs.ErrWrongKind
	}

	return v.rawBytes()
}

// rawBytes decodes the length-prefixed payload of a String or Binary
// value at v.pos.
func (v Value) rawBytes() ([]byte, error) {
	b0 := v.buf[v.pos]
	field := format.DecodeStrLenField(b0)

	dataPos := v.pos + 1
	length := field

	if format.StrLenOverflows(field) {
		n, nBytes, err := format.ReadVarint(v.buf, dataPos)
		if err != nil {
			return nil, err
		}

		length = int(n)
		dataPos += nBytes
	}

	if dataPos+length > len(v.buf) {
		return nil, errs.ErrTruncatedBuffer
	}

	return v.buf[dataPos : dataPos+length], nil
}

// Equal reports whether v and other are structurally equal: same kind,
// bit-exact numbers, byte-exact strings/binary, and recursively equal
// arrays/dicts (order-sensitive for arrays, key-set-and-value-sensitive
// for dicts).
func (v Value) Equal(other Value) bool {
	if v.IsAbsent() != other.IsAbsent() {
		return false
	}

	if v.IsAbsent() {
		return true
	}

	if v.Kind() != other.Kind() {
		return false
	}

	switch v.Kind() {
	case format.KindNull:
		return true
	case format.KindBool:
		a, _ := v.AsBool()
		b, _ := other.AsBool()

		return a == b
	case format.KindNumber:
		if v.IsInteger() && other.IsInteger() {
			ai, aerr := v.AsInt()
			bi, berr := other.AsInt()

			if aerr == nil || berr == nil {
				return aerr == nil && berr == nil && ai == bi
			}

			au, _ := v.AsUint()
			bu, _ := other.AsUint()

			return au == bu
		}

		af, _ := v.AsFloat()
		bf, _ := other.AsFloat()

		return math.Float64bits(af) == math.Float64bits(bf)
	case format.KindString:
		a, _ := v.StrBytes()
		b, _ := other.StrBytes()

		return string(a) == string(b)
	case format.KindBinary:
		a, _ := v.Binary()
		b, _ := other.Binary()

		return string(a) == string(b)
	case format.KindArray:
		return v.equalArrays(other)
	case format.KindDict:
		return v.equalDicts(other)
	default:
		return false
	}
}

func (v Value) equalArrays(other Value) bool {
	va, _ := v.AsArray()
	oa, _ := other.AsArray()

	if va.Len() != oa.Len() {
		return false
	}

	for i := 0; i < va.Len(); i++ {
		if !va.MustGet(i).Equal(oa.MustGet(i)) {
			return false
		}
	}

	return true
}

func (v Value) equalDicts(other Value) bool {
	vd, _ := v.AsDict()
	od, _ := other.AsDict()

	if vd.Len() != od.Len() {
		return false
	}

	for i := 0; i < vd.Len(); i++ {
		k := vd.KeyAt(i)
		if !vd.ValueAt(i).Equal(od.MustGet(k)) {
			return false
		}
	}

	return true
}
