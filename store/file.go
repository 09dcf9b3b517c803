package store

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/phucvin/fleece/encoder"
)

// File layout: 4-byte magic, 1-byte CompressionType, the codec's
// payload, then an 8-byte big-endian xxhash64 of the decompressed
// document. The checksum covers the document, not the compressed bytes,
// so switching codecs on a re-save never changes what the trailer means.
const (
	magic      = "FLC1"
	magicLen   = len(magic)
	headerLen  = magicLen + 1
	trailerLen = 8
)

// Save writes doc to path, compressed with codec and checksummed.
func Save(path string, doc []byte, codec Codec) error {
	_, err := SaveStats(path, doc, codec)

	return err
}

// SaveStats is Save, additionally reporting how much the codec shrank
// (or grew) the document — useful for a caller like cmd/fleece's encode
// subcommand deciding whether a given codec was worth its CPU cost on a
// document of this shape.
func SaveStats(path string, doc []byte, codec Codec) (CompressionStats, error) {
	compressed, err := codec.Compress(doc)
	if err != nil {
		return CompressionStats{}, fmt.Errorf("store: compress: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return CompressionStats{}, err
	}
	defer f.Close()

	if _, err := f.WriteString(magic); err != nil {
		return CompressionStats{}, err
	}

	ctype := codecType(codec)

	if _, err := f.Write([]byte{byte(ctype)}); err != nil {
		return CompressionStats{}, err
	}

	if _, err := f.Write(compressed); err != nil {
		return CompressionStats{}, err
	}

	var trailer [trailerLen]byte
	binary.BigEndian.PutUint64(trailer[:], xxhash.Sum64(doc))

	if _, err := f.Write(trailer[:]); err != nil {
		return CompressionStats{}, err
	}

	stats := CompressionStats{
		Algorithm:      ctype,
		OriginalSize:   int64(len(doc)),
		CompressedSize: int64(len(compressed)),
	}

	return stats, f.Close()
}

// Load reads and decompresses a document saved by Save, verifying its
// checksum before returning.
func Load(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return decodeFile(raw)
}

func decodeFile(raw []byte) ([]byte, error) {
	if len(raw) < headerLen+trailerLen || string(raw[:magicLen]) != magic {
		return nil, ErrInvalidFile
	}

	ctype := CompressionType(raw[magicLen])
	payload := raw[headerLen : len(raw)-trailerLen]
	wantSum := binary.BigEndian.Uint64(raw[len(raw)-trailerLen:])

	codec, err := GetCodec(ctype)
	if err != nil {
		return nil, err
	}

	doc, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("store: decompress: %w", err)
	}

	if xxhash.Sum64(doc) != wantSum {
		return nil, ErrChecksumMismatch
	}

	return doc, nil
}

// AppendDelta re-encodes v as a delta against the document already saved
// at path and appends the resulting suffix directly to the file: the
// existing payload bytes are left untouched, only the delta and a
// recomputed trailer are written, so the I/O cost matches the delta's
// size rather than the whole document's.
//
// AppendDelta only supports files saved with NewNoOpCompressor; a
// compressed payload is not byte-identical to the fleece document, so it
// cannot serve as an encoder base in place.
func AppendDelta(path string, v any, opts ...encoder.Option) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if len(raw) < headerLen+trailerLen || string(raw[:magicLen]) != magic {
		return ErrInvalidFile
	}

	ctype := CompressionType(raw[magicLen])
	if ctype != CompressionNone {
		return ErrDeltaRequiresUncompressed
	}

	base := raw[headerLen : len(raw)-trailerLen]
	oldSum := binary.BigEndian.Uint64(raw[len(raw)-trailerLen:])

	if xxhash.Sum64(base) != oldSum {
		return ErrChecksumMismatch
	}

	delta, err := encoder.EncodeDelta(base, v, opts...)
	if err != nil {
		return err
	}

	h := xxhash.New()
	h.Write(base)
	h.Write(delta)
	newSum := h.Sum64()

	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	trailerPos := int64(len(raw) - trailerLen)

	if _, err := f.WriteAt(delta, trailerPos); err != nil {
		return err
	}

	var trailer [trailerLen]byte
	binary.BigEndian.PutUint64(trailer[:], newSum)

	if _, err := f.WriteAt(trailer[:], trailerPos+int64(len(delta))); err != nil {
		return err
	}

	return f.Close()
}
