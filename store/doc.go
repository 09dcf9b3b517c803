// Package store is a file-level convenience layer over encoder/value: it
// compresses and checksums a complete, finished fleece document for
// storage or transport, and drives delta re-encoding against an on-disk
// base file.
//
// Nothing here touches the core codec's zero-copy contract — a document
// is always fully decompressed before a value.Value is ever constructed
// over it, so in-memory pointer arithmetic never sees compressed bytes.
package store
