package store

import "fmt"

// CompressionType identifies the codec a stored document was written
// with; it is also the single byte recorded in a file's header so Load
// can pick the matching Codec without the caller naming it.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionZstd
	CompressionS2
	CompressionLZ4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Compressor compresses a complete fleece document.
//
// Memory management: the returned slice is newly allocated and owned by
// the caller; the input slice is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor's transform.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one compression algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats reports the effect of a compression pass, useful for
// deciding whether a given codec is worth its CPU cost on a given
// document shape.
type CompressionStats struct {
	Algorithm      CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// CompressionRatio returns CompressedSize/OriginalSize; values below 1.0
// indicate the codec shrank the document.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage (0-100).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// GetCodec builds the built-in Codec for compressionType. CreateCodec is
// GetCodec with a caller name folded into the error message, for call
// sites (like cmd/fleece) that want to name themselves in a CLI error.
func GetCodec(compressionType CompressionType) (Codec, error) {
	return CreateCodec(compressionType, "store")
}

// CreateCodec builds a Codec for the named compression type. target
// names the caller for error messages (e.g. "fleece encode").
func CreateCodec(compressionType CompressionType, target string) (Codec, error) {
	switch compressionType {
	case CompressionNone:
		return NewNoOpCompressor(), nil
	case CompressionZstd:
		return NewZstdCompressor(), nil
	case CompressionS2:
		return NewS2Compressor(), nil
	case CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

// codecType identifies which CompressionType a concrete Codec value
// corresponds to, for recording in a file's header.
func codecType(c Codec) CompressionType {
	switch c.(type) {
	case ZstdCompressor:
		return CompressionZstd
	case S2Compressor:
		return CompressionS2
	case LZ4Compressor:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}
