package bitfield

import (
	"fmt"

	"github.com/wippyai/bitreg/bitfield/internal/mask"
	"github.com/wippyai/bitreg/errors"
)

// Field is the compiled get/set pair for one span and one value type. It holds
// no buffer state and is safe to share between goroutines; the buffers it is
// applied to are not.
type Field[T any] struct {
	codec  Codec[T]
	reads  []readStep
	writes []writeStep
	span   Span
}

// readStep fills one value byte from n buffer bits starting at bit.
type readStep struct {
	bit int
	n   uint8
}

// writeStep updates one buffer byte from value bytes j and j-1.
type writeStep struct {
	index int
	j     int
	shift uint8
	mask  byte
}

// NewField compiles span for values handled by codec. A codec reporting
// MSBFirst through ByteOrderer needs a span of whole bytes.
func NewField[T any](span Span, codec Codec[T]) (*Field[T], error) {
	if err := span.Validate(); err != nil {
		return nil, err
	}
	if codec == nil {
		return nil, errors.NilPointer(errors.PhaseDefine, nil, "Codec")
	}
	if n := span.ByteLen(); n > codec.Width() {
		return nil, errors.New(errors.PhaseDefine, errors.KindTypeMismatch).
			GoType(fmt.Sprintf("%T", *new(T))).
			Detail("span %s needs %d value bytes, codec holds %d", span, n, codec.Width()).
			Build()
	}
	if bo, ok := codec.(ByteOrderer); ok && bo.BitfieldByteOrder() == MSBFirst && span.Len()%8 != 0 {
		return nil, errors.New(errors.PhaseDefine, errors.KindUnsupported).
			GoType(fmt.Sprintf("%T", *new(T))).
			Detail("msb-first order needs a whole number of bytes, span %s has %d bits", span, span.Len()).
			Build()
	}

	f := &Field[T]{span: span, codec: codec}

	first, length := span.FirstBit(), span.Len()
	for i := 0; i < span.ByteLen(); i++ {
		f.reads = append(f.reads, readStep{
			bit: first + 8*i,
			n:   uint8(min(8, length-8*i)),
		})
	}

	shift := uint8(first % 8)
	for _, br := range span.Bytes() {
		f.writes = append(f.writes, writeStep{
			index: br.Index,
			j:     br.Index - first/8,
			shift: shift,
			mask:  mask.Fill(br.Lo, br.Hi),
		})
	}
	return f, nil
}

// MustField is NewField for package-level declarations; it panics on error.
func MustField[T any](span Span, codec Codec[T]) *Field[T] {
	f, err := NewField(span, codec)
	if err != nil {
		panic(err)
	}
	return f
}

// Span returns the span the field was compiled for.
func (f *Field[T]) Span() Span { return f.span }

// Get decodes the field from buf. buf must hold at least Span().RegisterSize()
// bytes; it is never modified.
func (f *Field[T]) Get(buf []byte) T {
	var small [8]byte
	value := valueBytes(&small, len(f.reads))
	for i, s := range f.reads {
		value[i] = mask.Read(buf, s.bit, s.n)
	}
	return f.codec.Decode(value)
}

// Set encodes v into buf, changing only the bits inside the span. Bits of v
// above the span width are dropped.
func (f *Field[T]) Set(buf []byte, v T) {
	var small [8]byte
	value := valueBytes(&small, len(f.reads))
	f.codec.Encode(v, value)

	for _, w := range f.writes {
		raw := at(value, w.j) << w.shift
		if w.shift > 0 {
			raw |= at(value, w.j-1) >> (8 - w.shift)
		}
		buf[w.index] = mask.Merge(buf[w.index], raw, w.mask)
	}
}

// Mask returns a size-byte buffer with exactly the span's bits set.
func (f *Field[T]) Mask(size int) []byte {
	out := make([]byte, size)
	for _, w := range f.writes {
		if w.index < size {
			out[w.index] = w.mask
		}
	}
	return out
}

func valueBytes(small *[8]byte, n int) []byte {
	if n <= len(small) {
		return small[:n]
	}
	return make([]byte, n)
}

// at treats value bytes outside the encoded width as zero.
func at(value []byte, i int) byte {
	if i < 0 || i >= len(value) {
		return 0
	}
	return value[i]
}
