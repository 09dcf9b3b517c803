package store

import "errors"

var (
	// ErrInvalidFile is returned when a file's header doesn't start with
	// the expected magic, or is too short to hold one.
	ErrInvalidFile = errors.New("store: not a fleece file")

	// ErrChecksumMismatch is returned when a loaded document's xxhash64
	// doesn't match the trailer recorded at save time.
	ErrChecksumMismatch = errors.New("store: checksum mismatch")

	// ErrDeltaRequiresUncompressed is returned by AppendDelta when the
	// target file was saved with a compressing codec: delta append only
	// works when the on-disk payload is byte-identical to the fleece
	// document, which only NoOpCompressor guarantees.
	ErrDeltaRequiresUncompressed = errors.New("store: delta append requires an uncompressed base file")
)
