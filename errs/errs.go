// Package errs defines the sentinel errors shared by fleece's encoder,
// reader, and mutation packages.
//
// Callers should use errors.Is against these sentinels; most call sites
// wrap them with fmt.Errorf("%w: ...") to attach context such as an
// offset or a field name.
package errs

import "errors"

var (
	// ErrUnsupportedValue is returned by the encoder when asked to
	// serialize a Go value of a kind the format doesn't support.
	ErrUnsupportedValue = errors.New("fleece: unsupported value kind")

	// ErrIntegerOutOfRange is returned by AsInt when a value's unsigned
	// magnitude exceeds math.MaxInt64, and by AsUint when a value is a
	// signed long-int encoding a negative number — neither accessor has
	// a representation for the other's range.
	ErrIntegerOutOfRange = errors.New("fleece: integer out of representable range")

	// ErrInvalidPointerOffset is returned when a pointer slot's offset
	// field decodes to zero, which is never a valid backward offset.
	ErrInvalidPointerOffset = errors.New("fleece: invalid pointer offset (zero)")

	// ErrPointerOutOfRange is returned when a pointer's target falls
	// outside the buffer.
	ErrPointerOutOfRange = errors.New("fleece: pointer target out of range")

	// ErrPointerChainTooDeep is returned when resolving a chain of
	// pointers exceeds the cycle guard.
	ErrPointerChainTooDeep = errors.New("fleece: pointer chain too deep")

	// ErrTruncatedBuffer is returned when a header, payload, or varint
	// cannot be read because the buffer ends early.
	ErrTruncatedBuffer = errors.New("fleece: truncated buffer")

	// ErrWrongKind is returned when a typed accessor (AsInt, Str, AsDict,
	// ...) is called on a value of a different kind.
	ErrWrongKind = errors.New("fleece: wrong value kind for accessor")

	// ErrKeyNotSorted is returned by the encoder if dict keys are not
	// presented in strictly ascending order after sorting (should never
	// happen; after sort.Strings it means a dict's Keys returned the same
	// key twice).
	ErrKeyNotSorted = errors.New("fleece: dict keys not strictly ascending")

	// ErrNoBase guards the invariant that EncodeDelta always calls
	// SetBase before writing a value; kept as a sentinel in case a
	// future caller adds a delta-writing path that doesn't go through
	// EncodeDelta, rather than panicking on that programmer error.
	ErrNoBase = errors.New("fleece: encoder has no base buffer registered")
)
