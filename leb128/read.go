// Package leb128 decodes Little Endian Base 128 integers directly out of a
// borrowed byte slice. Unlike an io.Reader based decoder, every function
// here takes the remaining buffer and returns how many bytes it consumed,
// so callers can advance a cursor over data they do not own without
// allocating or copying.
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when an encoding uses more bytes than its value
// width permits, or when the unused bits of the final permitted byte are
// not a valid continuation of the encoded value.
var ErrOverflow = errors.New("leb128: overlong or invalid encoding")

// ErrUnexpectedEOF is returned when the buffer ends before a terminating
// byte (continuation bit clear) is found.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

// ReadUint32 decodes an unsigned LEB128 integer of at most 5 bytes,
// returning the value and the number of bytes consumed.
func ReadUint32(buf []byte) (uint32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ {
		if i >= len(buf) {
			return 0, i, ErrUnexpectedEOF
		}
		b := buf[i]
		if i == 4 && b&0xF0 != 0 {
			// Either the value overflows 32 bits, or a 6th byte would be
			// required to terminate the sequence; both are invalid.
			return 0, i + 1, ErrOverflow
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 5, ErrOverflow
}

// ReadInt32 decodes a signed LEB128 integer (s32), at most 5 bytes.
func ReadInt32(buf []byte) (int32, int, error) {
	v, n, err := readSigned(buf, 32)
	return int32(v), n, err
}

// ReadInt33 decodes a signed 33-bit LEB128 integer (s33), used by the
// BlockType encoding to carry a type-section index alongside the empty and
// single-value-type forms. At most 5 bytes.
func ReadInt33(buf []byte) (int64, int, error) {
	return readSigned(buf, 33)
}

// ReadInt64 decodes a signed LEB128 integer (s64), at most 10 bytes.
func ReadInt64(buf []byte) (int64, int, error) {
	return readSigned(buf, 64)
}

// readSigned implements generic signed LEB128 decoding for a value of the
// given bit width, enforcing that the final permitted byte's unused bits
// are a correct sign-extension of the value (the canonical-encoding rule
// the Wasm spec requires for s32/s33/s64).
func readSigned(buf []byte, width int) (int64, int, error) {
	maxBytes := (width + 6) / 7

	var result int64
	var shift uint
	var b byte
	i := 0

	for {
		if i >= len(buf) {
			return 0, i, ErrUnexpectedEOF
		}
		if i >= maxBytes {
			return 0, i, ErrOverflow
		}
		b = buf[i]

		if i == maxBytes-1 {
			usedBits := uint(width - 7*i)
			signBit := (b >> (usedBits - 1)) & 1
			extraMask := byte(0x7f) &^ (byte(1)<<usedBits - 1)
			var expected byte
			if signBit == 1 {
				expected = extraMask
			}
			if b&extraMask != expected {
				return 0, i + 1, ErrOverflow
			}
		}

		result |= int64(b&0x7f) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
	}

	if shift < 64 && b&0x40 != 0 {
		result |= int64(-1) << shift
	}
	return result, i, nil
}
