// Package encoder serializes Go values into the fleece binary format: a
// bottom-up writer that lays out leaves first, interns repeated strings,
// and finalizes pointer slots with the correct relative offset once
// every target's absolute position is known.
//
// In delta mode (after SetBase), reader handles from the registered base
// buffer are serialized as pointers back into that base instead of being
// recursively re-encoded, so re-encoding a lightly modified document
// produces a short suffix rather than a full copy.
package encoder
