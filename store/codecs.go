package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// NoOpCompressor bypasses compression entirely. Its payload is a literal
// copy of the document, which is what makes AppendDelta's in-place file
// append possible: the on-disk payload is byte-identical to the fleece
// document, so a later encoder pass can use it directly as SetBase.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

// emptyDoc reports whether data is short enough that the underlying
// library's own empty-input handling isn't worth trusting; S2 and LZ4
// both require an explicit guard here, so it's centralized once instead
// of repeated per codec.
func emptyDoc(data []byte) bool { return len(data) == 0 }

// poolGet fetches a *T from p, relying on p.New to construct one the
// first time; poolPut returns it. Every codec below that keeps a warm
// library encoder/decoder around goes through these instead of its own
// Get/type-assert/Put boilerplate.
func poolGet[T any](p *sync.Pool) *T {
	v, _ := p.Get().(*T)

	return v
}

func poolPut[T any](p *sync.Pool, v *T) {
	p.Put(v)
}

// ZstdCompressor trades compression speed for ratio; best suited to
// cold storage or network transport of documents that are written once
// and read rarely.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// zstdDecoderPool and zstdEncoderPool hold warmed-up codecs: per the
// klauspost/compress/zstd docs, the decoder "has been designed to
// operate without allocations after a warmup," so it pays to keep one
// around rather than build one per call.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(false))
		if err != nil {
			panic(fmt.Sprintf("store: failed to create zstd decoder: %v", err))
		}

		return d
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		e, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderCRC(false))
		if err != nil {
			panic(fmt.Sprintf("store: failed to create zstd encoder: %v", err))
		}

		return e
	},
}

func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := poolGet[zstd.Encoder](&zstdEncoderPool)
	defer poolPut(&zstdEncoderPool, enc)

	return enc.EncodeAll(data, nil), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if emptyDoc(data) {
		return nil, nil
	}

	dec := poolGet[zstd.Decoder](&zstdDecoderPool)
	defer poolPut(&zstdDecoderPool, dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}

// S2Compressor favors speed over ratio — a good default for documents
// that are compressed and decompressed frequently.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if emptyDoc(data) {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if emptyDoc(data) {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// lz4CompressorPool pools lz4.Compressor instances, which carry internal
// state worth reusing across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4Compressor is the fastest of the three real codecs, at the cost of
// compression ratio.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if emptyDoc(data) {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc := poolGet[lz4.Compressor](&lz4CompressorPool)
	defer poolPut(&lz4CompressorPool, lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// lz4MaxScratch bounds how far Decompress will grow its scratch buffer
// before giving up; a fleece document this large would already have
// failed elsewhere (e.g. narrow/wide promotion math), so this is a
// safety backstop rather than a realistic ceiling.
const lz4MaxScratch = 128 * 1024 * 1024

// Decompress grows its scratch buffer geometrically (starting at 4x the
// compressed size) until lz4.UncompressBlock stops complaining that the
// buffer is too small, up to lz4MaxScratch.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if emptyDoc(data) {
		return nil, nil
	}

	for bufSize := len(data) * 4; bufSize <= lz4MaxScratch; bufSize *= 2 {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || bufSize == lz4MaxScratch {
			return nil, err
		}
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
