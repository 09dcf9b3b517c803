// Package format defines the on-disk bit layout of fleece documents: value
// tags, slot/pointer encoding, and the varint helper used by string,
// binary, and collection length fields.
//
// Package format has no dependency on the rest of the module other than
// the shared errs sentinels, so it can be imported by both the reader
// (value) and the writer (encoder) without creating a cycle.
package format
