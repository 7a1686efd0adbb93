package bitfield

import "math/bits"

// ByteOrder selects how a multi-byte value is laid out in its value bytes.
type ByteOrder uint8

const (
	// LSBFirst puts the least significant byte in value byte 0.
	LSBFirst ByteOrder = iota
	// MSBFirst puts the most significant byte in value byte 0.
	MSBFirst
)

func (o ByteOrder) String() string {
	if o == MSBFirst {
		return "msb-first"
	}
	return "lsb-first"
}

// ByteOrderer is implemented by value types that declare their own byte
// order. Uint consults it once, when the codec is built. Codecs implement it
// too, so NewField can reject MSB-first order on partial-byte spans.
type ByteOrderer interface {
	BitfieldByteOrder() ByteOrder
}

// Codec converts between a value and its value bytes. len(src) and len(dst)
// equal the ByteLen of the field carrying the value and never exceed Width.
type Codec[T any] interface {
	Width() int
	Decode(src []byte) T
	Encode(v T, dst []byte)
}

// Unsigned is the set of integer types Uint supports.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Uint returns the codec for an unsigned integer type. Byte order is
// LSB-first unless T implements ByteOrderer.
func Uint[T Unsigned]() Codec[T] {
	var zero T
	c := uintCodec[T]{width: bits.Len64(uint64(^zero)) / 8}
	if bo, ok := any(zero).(ByteOrderer); ok {
		c.order = bo.BitfieldByteOrder()
	}
	return c
}

// OrderedUint returns a uint64 codec with an explicit byte order.
func OrderedUint(order ByteOrder) Codec[uint64] {
	return uintCodec[uint64]{width: 8, order: order}
}

type uintCodec[T Unsigned] struct {
	width int
	order ByteOrder
}

func (c uintCodec[T]) Width() int { return c.width }

func (c uintCodec[T]) BitfieldByteOrder() ByteOrder { return c.order }

func (c uintCodec[T]) Decode(src []byte) T {
	var v T
	if c.order == MSBFirst {
		for _, b := range src {
			v = v<<8 | T(b)
		}
		return v
	}
	for i := len(src) - 1; i >= 0; i-- {
		v = v<<8 | T(src[i])
	}
	return v
}

func (c uintCodec[T]) Encode(v T, dst []byte) {
	n := len(dst)
	for i := 0; i < n; i++ {
		b := byte(v >> (8 * uint(i)))
		if c.order == MSBFirst {
			dst[n-1-i] = b
		} else {
			dst[i] = b
		}
	}
}

// Bool returns the codec for bool: true encodes as 1 in value byte 0, and
// only bit 0 of value byte 0 is consulted on decode.
func Bool() Codec[bool] { return boolCodec{} }

type boolCodec struct{}

func (boolCodec) Width() int { return 1 }

func (boolCodec) Decode(src []byte) bool {
	return src[0]&1 != 0
}

func (boolCodec) Encode(v bool, dst []byte) {
	clear(dst)
	if v {
		dst[0] = 1
	}
}

// Wrapped integers with a fixed byte order, independent of the host.
type (
	LE16 uint16
	LE32 uint32
	LE64 uint64
	BE16 uint16
	BE32 uint32
	BE64 uint64
)

func (LE16) BitfieldByteOrder() ByteOrder { return LSBFirst }
func (LE32) BitfieldByteOrder() ByteOrder { return LSBFirst }
func (LE64) BitfieldByteOrder() ByteOrder { return LSBFirst }
func (BE16) BitfieldByteOrder() ByteOrder { return MSBFirst }
func (BE32) BitfieldByteOrder() ByteOrder { return MSBFirst }
func (BE64) BitfieldByteOrder() ByteOrder { return MSBFirst }
