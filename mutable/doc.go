// Package mutable provides a copy-on-write overlay over reader handles:
// Dict and Array accumulate edits in memory against a reader dict/array
// without ever touching the underlying buffer, and can be fed straight
// back into encoder.Encode (including in delta mode, where an untouched
// key or index still holds its original value.Value and is therefore
// re-encoded as a pointer into the base rather than copied).
package mutable
