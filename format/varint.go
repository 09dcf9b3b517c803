package format

import "github.com/phucvin/fleece/errs"

// AppendVarint appends v to buf using the LEB128-style encoding used for
// collection counts and string/binary lengths that overflow their inline
// header field: 7 bits per byte, least-significant first, continuation
// bit in the MSB.
func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}

	return append(buf, byte(v))
}

// SizeofVarint returns the number of bytes AppendVarint would produce for v.
func SizeofVarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// ReadVarint reads a varint starting at pos and returns its value plus
// the number of bytes consumed.
func ReadVarint(buf []byte, pos int) (value uint64, n int, err error) {
	var shift uint

	for {
		if pos+n >= len(buf) {
			return 0, 0, errs.ErrTruncatedBuffer
		}

		b := buf[pos+n]
		value |= uint64(b&0x7F) << shift
		n++

		if b&0x80 == 0 {
			return value, n, nil
		}

		shift += 7
		if shift >= 64 {
			return 0, 0, errs.ErrTruncatedBuffer
		}
	}
}
