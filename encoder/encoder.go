package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/phucvin/fleece/errs"
	"github.com/phucvin/fleece/format"
	"github.com/phucvin/fleece/internal/options"
	"github.com/phucvin/fleece/internal/pool"
	"github.com/phucvin/fleece/value"
)

// Binary marks a []byte as a Binary value rather than a String; a plain
// []byte is also accepted directly as Binary, since the format has no
// byte-string ambiguity the way Go's string/[]byte pair does.
type Binary []byte

// arrayLike lets callers (notably the mutable package) feed a non-slice
// array representation through Encode without the encoder importing it.
type arrayLike interface {
	Len() int
	Get(i int) any
}

// dictLike is arrayLike's dict counterpart. Keys need not be sorted; the
// encoder always sorts before emitting.
type dictLike interface {
	Keys() []string
	Get(key string) any
}

// slotKind distinguishes a to-be-finalized slot's two possible shapes.
type slotKind int

const (
	slotImmediate slotKind = iota
	slotPointer
)

// slotDescriptor is the result of writing one value: either its 2
// immediate payload bytes, or the absolute offset of the value it was
// written at, to be turned into a relative pointer once the referencing
// slot's own position is known.
type slotDescriptor struct {
	kind   slotKind
	imm    [2]byte
	target int64
}

// Encoder serializes a single Go value into the fleece binary format,
// writing leaves before the collections that point to them. It is not
// reusable: create a new Encoder (or call the package-level Encode) for
// each document.
type Encoder struct {
	buf         *pool.ByteBuffer
	stringTable map[string]int64

	base    []byte
	baseLen int64
}

// New creates an Encoder ready to serialize one value.
func New(opts ...Option) *Encoder {
	cfg := &encoderConfig{initialCapacity: pool.DefaultSize}
	if err := options.Apply(cfg, opts...); err != nil {
		// WithInitialCapacity is the only Option today and never errors;
		// fall back to the default size rather than surface an error from
		// a constructor the rest of the package treats as infallible.
		cfg.initialCapacity = pool.DefaultSize
	}

	return &Encoder{
		buf:         pool.NewByteBuffer(cfg.initialCapacity),
		stringTable: make(map[string]int64),
	}
}

// SetBase registers base as the buffer this encoding pass is a delta
// against. Reader handles (value.Value) whose buffer is base, or a
// byte-identical copy of it, are serialized as a pointer back into base rather than being recursively
// re-encoded, so Encode's output is a short suffix meant to be appended
// after base, not a standalone document.
func (e *Encoder) SetBase(base []byte) {
	e.base = base
	e.baseLen = int64(len(base))
}

// Encode serializes v and returns the bytes written this pass. With no
// base set, the returned slice is a complete, self-contained document.
// With a base set, the caller must concatenate base and the returned
// bytes to get a valid document.
func (e *Encoder) Encode(v any) ([]byte, error) {
	desc, err := e.writeValue(v)
	if err != nil {
		return nil, err
	}

	if err := e.finalizeRoot(desc); err != nil {
		return nil, err
	}

	return e.buf.Bytes(), nil
}

// Encode is a convenience for New(opts...).Encode(v).
func Encode(v any, opts ...Option) ([]byte, error) {
	return New(opts...).Encode(v)
}

// EncodeDelta is a convenience for a one-shot delta encoding pass: the
// returned bytes are meant to be appended after base.
func EncodeDelta(base []byte, v any, opts ...Option) ([]byte, error) {
	e := New(opts...)
	e.SetBase(base)

	return e.Encode(v)
}

// absPos is the absolute position (including any base length) the next
// byte written to e.buf will land at.
func (e *Encoder) absPos() int64 {
	return e.baseLen + int64(e.buf.Len())
}

// align pads e.buf with a single zero byte if the next write would start
// on an odd absolute offset. Every value begins on an even offset.
func (e *Encoder) align() {
	if e.absPos()%2 != 0 {
		e.buf.MustWriteByte(0x00)
	}
}

func (e *Encoder) writeValue(v any) (slotDescriptor, error) {
	switch x := v.(type) {
	case nil:
		return slotDescriptor{kind: slotImmediate, imm: [2]byte{format.SpecialNull, 0}}, nil
	case bool:
		b := format.SpecialFalse
		if x {
			b = format.SpecialTrue
		}

		return slotDescriptor{kind: slotImmediate, imm: [2]byte{b, 0}}, nil
	case int:
		return e.writeInt(int64(x))
	case int8:
		return e.writeInt(int64(x))
	case int16:
		return e.writeInt(int64(x))
	case int32:
		return e.writeInt(int64(x))
	case int64:
		return e.writeInt(x)
	case uint:
		return e.writeUint(uint64(x))
	case uint8:
		return e.writeUint(uint64(x))
	case uint16:
		return e.writeUint(uint64(x))
	case uint32:
		return e.writeUint(uint64(x))
	case uint64:
		return e.writeUint(x)
	case float32:
		return e.writeFloat(float64(x))
	case float64:
		return e.writeFloat(x)
	case string:
		return e.writeString(x)
	case Binary:
		return e.writeBinary([]byte(x))
	case []byte:
		return e.writeBinary(x)
	case []any:
		n := len(x)

		return e.writeArray(n, func(i int) any { return x[i] })
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		return e.writeDictEntries(keys, func(k string) any { return x[k] })
	case value.Value:
		return e.writeReaderValue(x)
	case arrayLike:
		return e.writeArray(x.Len(), x.Get)
	case dictLike:
		keys := append([]string(nil), x.Keys()...)
		sort.Strings(keys)

		return e.writeDictEntries(keys, x.Get)
	default:
		return slotDescriptor{}, fmt.Errorf("%w: %T", errs.ErrUnsupportedValue, v)
	}
}

func (e *Encoder) writeInt(v int64) (slotDescriptor, error) {
	if v >= format.SmallIntMin && v <= format.SmallIntMax {
		return slotDescriptor{kind: slotImmediate, imm: format.EncodeSmallInt(v)}, nil
	}

	return e.writeLongInt(v, false)
}

func (e *Encoder) writeUint(v uint64) (slotDescriptor, error) {
	if v <= format.SmallIntMax {
		return e.writeInt(int64(v))
	}

	if v <= math.MaxInt64 {
		return e.writeLongInt(int64(v), false)
	}

	return e.writeLongIntUnsigned(v)
}

// longIntSize returns the smallest power-of-two byte width (1, 2, 4, or
// 8) that holds v in two's complement.
func longIntSize(v int64) int {
	switch {
	case v >= -1<<7 && v <= 1<<7-1:
		return 1
	case v >= -1<<15 && v <= 1<<15-1:
		return 2
	case v >= -1<<31 && v <= 1<<31-1:
		return 4
	default:
		return 8
	}
}

func (e *Encoder) writeLongInt(v int64, unsigned bool) (slotDescriptor, error) {
	size := longIntSize(v)

	e.align()
	abs := e.absPos()

	e.buf.MustWriteByte(format.EncodeLongIntHeader(unsigned, size))

	u := uint64(v)
	for i := 0; i < size; i++ {
		e.buf.MustWriteByte(byte(u))
		u >>= 8
	}

	return slotDescriptor{kind: slotPointer, target: abs}, nil
}

func (e *Encoder) writeLongIntUnsigned(v uint64) (slotDescriptor, error) {
	e.align()
	abs := e.absPos()

	e.buf.MustWriteByte(format.EncodeLongIntHeader(true, 8))

	u := v
	for i := 0; i < 8; i++ {
		e.buf.MustWriteByte(byte(u))
		u >>= 8
	}

	return slotDescriptor{kind: slotPointer, target: abs}, nil
}

func (e *Encoder) writeFloat(v float64) (slotDescriptor, error) {
	e.align()
	abs := e.absPos()

	e.buf.MustWriteByte(format.FloatHeaderWide)
	e.buf.MustWriteByte(0x00)

	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		e.buf.MustWriteByte(byte(bits))
		bits >>= 8
	}

	return slotDescriptor{kind: slotPointer, target: abs}, nil
}

// writeString interns: the first occurrence of a given string is written
// to the buffer and its offset cached; every subsequent occurrence in
// this document reuses that offset as a pointer target.
func (e *Encoder) writeString(s string) (slotDescriptor, error) {
	if off, ok := e.stringTable[s]; ok {
		return slotDescriptor{kind: slotPointer, target: off}, nil
	}

	e.align()
	abs := e.absPos()

	b := []byte(s)

	header, inline := format.EncodeStrLenHeader(format.TagString, len(b))
	e.buf.MustWriteByte(header)

	if !inline {
		e.buf.MustWrite(format.AppendVarint(nil, uint64(len(b))))
	}

	e.buf.MustWrite(b)

	e.stringTable[s] = abs

	return slotDescriptor{kind: slotPointer, target: abs}, nil
}

func (e *Encoder) writeBinary(b []byte) (slotDescriptor, error) {
	e.align()
	abs := e.absPos()

	header, inline := format.EncodeStrLenHeader(format.TagBinary, len(b))
	e.buf.MustWriteByte(header)

	if !inline {
		e.buf.MustWrite(format.AppendVarint(nil, uint64(len(b))))
	}

	e.buf.MustWrite(b)

	return slotDescriptor{kind: slotPointer, target: abs}, nil
}

func (e *Encoder) writeArray(n int, get func(i int) any) (slotDescriptor, error) {
	slots := make([]slotDescriptor, n)

	for i := 0; i < n; i++ {
		d, err := e.writeValue(get(i))
		if err != nil {
			return slotDescriptor{}, err
		}

		slots[i] = d
	}

	return e.writeCollection(format.TagArray, n, slots)
}

func (e *Encoder) writeDictEntries(keys []string, get func(key string) any) (slotDescriptor, error) {
	slots := make([]slotDescriptor, 0, len(keys)*2)

	for i, k := range keys {
		if i > 0 && keys[i-1] >= k {
			return slotDescriptor{}, errs.ErrKeyNotSorted
		}

		kd, err := e.writeValue(k)
		if err != nil {
			return slotDescriptor{}, err
		}

		vd, err := e.writeValue(get(k))
		if err != nil {
			return slotDescriptor{}, err
		}

		slots = append(slots, kd, vd)
	}

	return e.writeCollection(format.TagDict, len(keys), slots)
}

// writeCollection emits an Array or Dict header plus slots for the
// already-written children in slots. itemCount is the element count for
// an array, the entry count for a dict (slots holds 2*itemCount entries
// for a dict, key and value interleaved).
//
// Narrow vs. wide is decided by predicting every pointer slot's absolute
// position assuming narrow (2-byte) slots and checking whether any
// target falls outside the 15-bit reach; if so the whole collection, and
// every slot in it, is written wide.
func (e *Encoder) writeCollection(tag format.Tag, itemCount int, slots []slotDescriptor) (slotDescriptor, error) {
	e.align()
	headerPos := e.absPos()

	_, _, overflow := format.EncodeCollectionHeader(tag, false, itemCount)

	headerLen := 2

	var countVarint []byte
	if overflow {
		countVarint = format.AppendVarint(nil, uint64(itemCount))
		headerLen += len(countVarint)
	}

	dataPos := headerPos + int64(headerLen)

	wide := false

	for i, d := range slots {
		if d.kind != slotPointer {
			continue
		}

		slotAbsPos := dataPos + int64(i*format.NarrowPointerSize)
		if !format.FitsNarrowPointer(format.OffsetUnits(slotAbsPos, d.target)) {
			wide = true

			break
		}
	}

	b0, b1, _ := format.EncodeCollectionHeader(tag, wide, itemCount)
	e.buf.MustWriteByte(b0)
	e.buf.MustWriteByte(b1)

	if overflow {
		e.buf.MustWrite(countVarint)
	}

	slotSize := format.SlotSize(wide)

	for i, d := range slots {
		slotAbsPos := dataPos + int64(i*slotSize)
		e.buf.MustWrite(finalizeSlot(d, slotAbsPos, wide))
	}

	return slotDescriptor{kind: slotPointer, target: headerPos}, nil
}

func finalizeSlot(d slotDescriptor, slotAbsPos int64, wide bool) []byte {
	out := make([]byte, format.SlotSize(wide))

	switch d.kind {
	case slotImmediate:
		if wide {
			out[2], out[3] = d.imm[0], d.imm[1]
		} else {
			out[0], out[1] = d.imm[0], d.imm[1]
		}
	case slotPointer:
		offsetUnits := format.OffsetUnits(slotAbsPos, d.target)
		if wide {
			format.WriteWidePointer(out, 0, offsetUnits)
		} else {
			format.WriteNarrowPointer(out, 0, offsetUnits)
		}
	}

	return out
}

// writeReaderValue serializes a reader handle. If it was read from the
// registered base buffer, the whole subtree it roots is replaced by a
// single pointer back into base: this is the delta encoder's "unchanged
// subtree" reuse, and it applies recursively, since a child pulled out of
// a base-rooted array or dict is itself a Value over the same buffer.
func (e *Encoder) writeReaderValue(v value.Value) (slotDescriptor, error) {
	if v.IsAbsent() {
		return slotDescriptor{}, errs.ErrUnsupportedValue
	}

	if e.base != nil && sameBuffer(v.Buf(), e.base) {
		return slotDescriptor{kind: slotPointer, target: int64(v.Pos())}, nil
	}

	switch v.Kind() {
	case format.KindNull:
		return e.writeValue(nil)
	case format.KindBool:
		b, err := v.AsBool()
		if err != nil {
			return slotDescriptor{}, err
		}

		return e.writeValue(b)
	case format.KindNumber:
		if v.IsInteger() {
			i, err := v.AsInt()
			if err != nil {
				if errors.Is(err, errs.ErrIntegerOutOfRange) {
					u, uerr := v.AsUint()
					if uerr != nil {
						return slotDescriptor{}, uerr
					}

					return e.writeUint(u)
				}

				return slotDescriptor{}, err
			}

			return e.writeInt(i)
		}

		f, err := v.AsFloat()
		if err != nil {
			return slotDescriptor{}, err
		}

		return e.writeFloat(f)
	case format.KindString:
		s, err := v.Str()
		if err != nil {
			return slotDescriptor{}, err
		}

		return e.writeString(s)
	case format.KindBinary:
		b, err := v.Binary()
		if err != nil {
			return slotDescriptor{}, err
		}

		return e.writeBinary(b)
	case format.KindArray:
		arr, err := v.AsArray()
		if err != nil {
			return slotDescriptor{}, err
		}

		return e.writeArray(arr.Len(), func(i int) any { return arr.MustGet(i) })
	case format.KindDict:
		d, err := v.AsDict()
		if err != nil {
			return slotDescriptor{}, err
		}

		return e.writeDictEntries(d.Keys(), func(k string) any { return d.MustGet(k) })
	default:
		return slotDescriptor{}, errs.ErrUnsupportedValue
	}
}

// finalizeRoot writes the trailing root slot. If desc's target is within
// narrow reach, the root is a direct 2-byte narrow pointer; otherwise a
// 4-byte wide pointer is emitted first and the final narrow root slot
// points back 2 units to it (double indirection).
func (e *Encoder) finalizeRoot(desc slotDescriptor) error {
	e.align()
	rootSlotPos := e.absPos()

	if desc.kind == slotImmediate {
		e.buf.MustWrite(desc.imm[:])

		return nil
	}

	offsetUnits := format.OffsetUnits(rootSlotPos, desc.target)
	if format.FitsNarrowPointer(offsetUnits) {
		out := make([]byte, format.NarrowPointerSize)
		format.WriteNarrowPointer(out, 0, offsetUnits)
		e.buf.MustWrite(out)

		return nil
	}

	widePos := rootSlotPos

	wout := make([]byte, format.WidePointerSize)
	format.WriteWidePointer(wout, 0, offsetUnits)
	e.buf.MustWrite(wout)

	narrowPos := widePos + int64(format.WidePointerSize)
	narrowOffsetUnits := format.OffsetUnits(narrowPos, widePos)

	nout := make([]byte, format.NarrowPointerSize)
	format.WriteNarrowPointer(nout, 0, narrowOffsetUnits)
	e.buf.MustWrite(nout)

	return nil
}

// sameBuffer reports whether a is the buffer registered via SetBase:
// either it shares b's backing array, or it is a separate copy holding
// exactly the same bytes (as when the base was read from a file again),
// in which case every position in a addresses the same value in b.
func sameBuffer(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == 0 && len(b) == 0
	}

	if &a[0] == &b[0] {
		return true
	}

	return len(a) == len(b) && bytes.Equal(a, b)
}
