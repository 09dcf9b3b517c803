// Package fleece implements a binary, zero-copy, JSON-like value format:
// a document is a flat byte buffer that can be queried directly without a
// parse pass, and can be extended with append-only deltas that reuse the
// unchanged parts of a previously-written document.
//
// # Basic usage
//
// Encoding a document and reading it back:
//
//	doc, err := fleece.Encode(map[string]any{
//	    "name": "widget",
//	    "tags": []any{"a", "b"},
//	})
//
//	root, err := fleece.Root(doc)
//	dict, err := root.AsDict()
//	name, err := dict.MustGet("name").Str()
//
// Persisting a document to disk uncompressed, so that a delta can be
// appended to it later (AppendDelta rejects compressed files):
//
//	err := fleece.Save("doc.fleece", doc, store.NewNoOpCompressor())
//	loaded, err := fleece.Load("doc.fleece")
//
// Mutating a loaded document and appending only the changed bytes:
//
//	root, _ := fleece.Root(loaded)
//	d, _ := fleece.NewMutableDict(root)
//	d.Set("name", "widget-v2")
//	err = fleece.AppendDelta("doc.fleece", d)
//
// # Package structure
//
// This file provides convenience wrappers around encoder, value, mutable,
// and store. For finer control (the Encoder type and its initial-capacity
// option, the individual codecs), use those packages directly.
package fleece

import (
	"github.com/phucvin/fleece/encoder"
	"github.com/phucvin/fleece/mutable"
	"github.com/phucvin/fleece/store"
	"github.com/phucvin/fleece/value"
)

// Encode serializes v into a standalone fleece document. v may be any of
// the shapes encoder.Encode accepts: nil, bool, the numeric kinds,
// string, []byte/encoder.Binary, []any, map[string]any, a value.Value
// read from another document, or a *mutable.Dict/*mutable.Array.
func Encode(v any, opts ...encoder.Option) ([]byte, error) {
	return encoder.Encode(v, opts...)
}

// EncodeDelta re-encodes v as a delta against base: the returned bytes
// are only valid appended directly after base, and any subtree of v that
// is still a value.Value read from base is emitted as a pointer back
// into it rather than being duplicated.
func EncodeDelta(base []byte, v any, opts ...encoder.Option) ([]byte, error) {
	return encoder.EncodeDelta(base, v, opts...)
}

// Root parses the root value of an encoded document.
func Root(doc []byte) (value.Value, error) {
	return value.Root(doc)
}

// Save writes doc to path under the given codec, with a trailing
// checksum over the decompressed document.
func Save(path string, doc []byte, codec store.Codec) error {
	return store.Save(path, doc, codec)
}

// Load reads and verifies a document previously written by Save.
func Load(path string) ([]byte, error) {
	return store.Load(path)
}

// AppendDelta re-encodes v as a delta against the document already saved
// at path and appends it in place. The file at path must have been saved
// with store.NewNoOpCompressor: delta reuse needs the on-disk payload to
// be byte-identical to the document encoder.Encode produced.
func AppendDelta(path string, v any, opts ...encoder.Option) error {
	return store.AppendDelta(path, v, opts...)
}

// NewMutableDict promotes a dict read from a document into a copy-on-write
// overlay: untouched keys keep referencing the original bytes, so a
// subsequent AppendDelta only serializes what Set/Remove actually changed.
func NewMutableDict(root value.Value) (*mutable.Dict, error) {
	return mutable.DictFromValue(root)
}

// NewMutableArray promotes an array read from a document into a
// copy-on-write overlay, per NewMutableDict.
func NewMutableArray(root value.Value) (*mutable.Array, error) {
	return mutable.ArrayFromValue(root)
}
