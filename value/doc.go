// Package value provides zero-copy, lazy navigation over an encoded
// fleece document: a Value is a lightweight handle (buffer, position)
// that resolves pointers on construction and exposes typed accessors,
// array indexing, and binary-search dictionary lookup directly against
// the raw bytes.
//
// A Value never allocates on the read path except where a caller asks
// for owned data (e.g. Str, which copies out of the buffer). It borrows
// the byte slice for its entire lifetime and never mutates it.
package value
