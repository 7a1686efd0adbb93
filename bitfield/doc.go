// Package bitfield reads and writes named bit fields packed into a byte buffer.
//
// A Span locates a field: Single(bit) for one bit, Range(start, end) for the
// bits [start, end). Bit 0 is the least significant bit of byte 0 and bit
// numbering continues into the following bytes:
//
//	         byte 0                       byte 1
//	bit  7 6 5 4 3 2 1 0     15 14 13 12 11 10  9  8
//
// A Field compiles a span and a Codec once and can then be applied to any
// buffer large enough to hold the span:
//
//	var mode = bitfield.MustField(bitfield.Range(6, 10), bitfield.Uint[uint8]())
//
//	buf := make([]byte, 2)
//	mode.Set(buf, 0b1111) // buf == [0b11000000, 0b00000011]
//	mode.Get(buf)         // 0b1111
//
// # Value Bytes
//
// A field of n bits is carried by ceil(n/8) value bytes. Value byte i holds
// span bits [8i, 8i+8). Codecs convert between a Go value and its value bytes,
// least significant byte first unless the type implements ByteOrderer.
//
// # Writes
//
// Set only touches bits inside the span: each affected buffer byte is
// rewritten as (old &^ mask) | (new & mask). Values wider than the span are
// truncated to their low bits; there is no overflow error.
//
// # Thread Safety
//
// Field and Codec values are immutable after construction. Two Set calls on
// fields that share a buffer byte are read-modify-write sequences and must be
// serialized by the caller.
package bitfield
