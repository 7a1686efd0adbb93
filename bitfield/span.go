package bitfield

import (
	"fmt"

	"github.com/wippyai/bitreg/errors"
)

type shape uint8

const (
	shapeNone shape = iota
	shapeSingle
	shapeRange
)

// Span locates a field inside a register buffer. Bit 0 is the least
// significant bit of byte 0; bit 8 is the least significant bit of byte 1.
// The zero Span is unpopulated and fails Validate.
type Span struct {
	start uint16
	end   uint16 // exclusive
	shape shape
}

// Single returns a one-bit span at absolute position bit.
func Single(bit uint8) Span {
	return Span{shape: shapeSingle, start: uint16(bit), end: uint16(bit) + 1}
}

// Range returns the span of bits [start, end).
func Range(start, end uint8) Span {
	return Span{shape: shapeRange, start: uint16(start), end: uint16(end)}
}

// Inclusive returns the span of bits [from, to], the form used by
// `from=x, to=y` annotations.
func Inclusive(from, to uint8) Span {
	return Span{shape: shapeRange, start: uint16(from), end: uint16(to) + 1}
}

// IsSingle reports whether s was built with Single.
func (s Span) IsSingle() bool { return s.shape == shapeSingle }

// IsZero reports whether s is unpopulated.
func (s Span) IsZero() bool { return s.shape == shapeNone }

// FirstBit is the lowest absolute bit of the span.
func (s Span) FirstBit() int { return int(s.start) }

// LastBit is the highest absolute bit of the span.
func (s Span) LastBit() int { return int(s.end) - 1 }

// End is the exclusive upper bound of the span.
func (s Span) End() int { return int(s.end) }

// Len is the number of bits in the span.
func (s Span) Len() int { return int(s.end) - int(s.start) }

// ByteLen is the number of value bytes needed to carry the span: ceil(Len/8).
func (s Span) ByteLen() int { return (s.Len() + 7) / 8 }

// RegisterSize is the smallest buffer that contains the span.
func (s Span) RegisterSize() int { return s.LastBit()/8 + 1 }

// Validate checks the span shape. Accessors never re-check at runtime.
func (s Span) Validate() error {
	switch {
	case s.shape == shapeNone:
		return errors.InvalidSpan(errors.PhaseDefine, nil, "span has neither a bit nor a range")
	case s.start >= s.end:
		return errors.InvalidSpan(errors.PhaseDefine, nil,
			fmt.Sprintf("start %d not before end %d", s.start, s.end))
	case s.end > 256:
		return errors.InvalidSpan(errors.PhaseDefine, nil,
			fmt.Sprintf("end %d beyond bit 255", s.end))
	}
	return nil
}

// ByteRange is the part of a span that falls in one buffer byte.
type ByteRange struct {
	Index int   // buffer byte index
	Lo    uint8 // first bit inside the byte
	Hi    uint8 // exclusive end inside the byte
}

// Bytes lists, in ascending order, every buffer byte the span touches and the
// bit sub-range it covers there.
func (s Span) Bytes() []ByteRange {
	if s.Len() <= 0 {
		return nil
	}
	first, last := s.FirstBit(), s.LastBit()
	out := make([]ByteRange, 0, last/8-first/8+1)
	for idx := first / 8; idx <= last/8; idx++ {
		br := ByteRange{Index: idx, Lo: 0, Hi: 8}
		if idx == first/8 {
			br.Lo = uint8(first % 8)
		}
		if idx == last/8 {
			br.Hi = uint8(last%8) + 1
		}
		out = append(out, br)
	}
	return out
}

// Overlaps reports whether s and o share at least one bit.
func (s Span) Overlaps(o Span) bool {
	return s.start < o.end && o.start < s.end
}

func (s Span) String() string {
	switch s.shape {
	case shapeSingle:
		return fmt.Sprintf("@%d", s.start)
	case shapeRange:
		return fmt.Sprintf("[%d..%d]", s.start, int(s.end)-1)
	default:
		return "<none>"
	}
}

// SizeFor returns the register size needed to hold every span:
// floor(max last bit / 8) + 1, or 0 when no spans are given.
func SizeFor(spans ...Span) int {
	size := 0
	for _, s := range spans {
		if n := s.RegisterSize(); n > size {
			size = n
		}
	}
	return size
}
