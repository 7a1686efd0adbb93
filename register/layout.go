package register

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/xxHash/xxHash64"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
)

// Layout is a register type: an ordered set of named fields over a buffer of
// fixed size. A Layout is immutable and safe for concurrent use.
type Layout struct {
	index       map[string]int
	name        string
	fields      []*field
	size        int
	fingerprint uint64
}

// field is a descriptor compiled into its accessor. Exactly one of u and b
// is set.
type field struct {
	u   *bitfield.Field[uint64]
	b   *bitfield.Field[bool]
	max uint64
	Descriptor
}

// NewLayout validates the descriptors and compiles each of them once.
func NewLayout(name string, descs ...Descriptor) (*Layout, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseDefine, nil, "layout name is empty")
	}

	l := &Layout{
		name:  name,
		index: make(map[string]int, len(descs)),
	}

	spans := make([]bitfield.Span, 0, len(descs))
	for _, d := range descs {
		f, err := compile(name, d)
		if err != nil {
			return nil, err
		}
		if _, dup := l.index[d.Name]; dup {
			return nil, errors.Duplicate(errors.PhaseDefine, "field", name+"."+d.Name)
		}
		l.index[d.Name] = len(l.fields)
		l.fields = append(l.fields, f)
		spans = append(spans, d.Span)
	}

	l.size = bitfield.SizeFor(spans...)
	l.fingerprint = fingerprint(l)
	return l, nil
}

// MustLayout is NewLayout for package-level declarations.
func MustLayout(name string, descs ...Descriptor) *Layout {
	l, err := NewLayout(name, descs...)
	if err != nil {
		panic(err)
	}
	return l
}

func compile(layout string, d Descriptor) (*field, error) {
	path := []string{layout, d.Name}
	if d.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseDefine, []string{layout}, "field name is empty")
	}
	if err := d.Span.Validate(); err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = path
		}
		return nil, err
	}

	width := d.Type.Kind.Width()
	if width == 0 {
		return nil, errors.InvalidInput(errors.PhaseDefine, path,
			fmt.Sprintf("invalid value type %s", d.Type))
	}
	if n := d.Span.ByteLen(); n > width {
		return nil, errors.New(errors.PhaseDefine, errors.KindTypeMismatch).
			Path(path...).
			FieldType(d.Type.String()).
			Detail("span %s needs %d value bytes", d.Span, n).
			Build()
	}
	f := &field{Descriptor: d}
	var err error
	if d.Type.Kind == KindBool {
		f.b, err = bitfield.NewField(d.Span, bitfield.Bool())
		f.max = 1
	} else {
		f.u, err = bitfield.NewField(d.Span, bitfield.OrderedUint(d.Type.Order))
		f.max = maxValue(min(d.Span.Len(), 8*width))
	}
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = path
			e.FieldType = d.Type.String()
		}
		return nil, err
	}
	return f, nil
}

func maxValue(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(bits) - 1
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Size is the buffer size in bytes: floor(max last bit / 8) + 1, or 0 for a
// layout without fields.
func (l *Layout) Size() int { return l.size }

// Fingerprint identifies the buffer layout: equal fingerprints mean the same
// name, size and field descriptors in the same order.
func (l *Layout) Fingerprint() uint64 { return l.fingerprint }

// Fields returns the descriptors in declaration order.
func (l *Layout) Fields() []Descriptor {
	out := make([]Descriptor, len(l.fields))
	for i, f := range l.fields {
		out[i] = f.Descriptor
	}
	return out
}

// Field returns the descriptor with the given name.
func (l *Layout) Field(name string) (Descriptor, bool) {
	i, ok := l.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return l.fields[i].Descriptor, true
}

// Max returns the largest value the named field can hold.
func (l *Layout) Max(name string) (uint64, error) {
	f, err := l.lookup(errors.PhaseDefine, name)
	if err != nil {
		return 0, err
	}
	return f.max, nil
}

// Mask returns a Size()-byte buffer with the bits of the named field set.
func (l *Layout) Mask(name string) ([]byte, error) {
	f, err := l.lookup(errors.PhaseDefine, name)
	if err != nil {
		return nil, err
	}
	if f.b != nil {
		return f.b.Mask(l.size), nil
	}
	return f.u.Mask(l.size), nil
}

// Overlap is a pair of fields that share at least one bit.
type Overlap struct {
	A, B string
}

// Overlaps lists field pairs whose spans share bits. Overlapping fields are
// allowed; a write to one changes the other.
func (l *Layout) Overlaps() []Overlap {
	var out []Overlap
	for i, a := range l.fields {
		for _, b := range l.fields[i+1:] {
			if a.Span.Overlaps(b.Span) {
				out = append(out, Overlap{A: a.Name, B: b.Name})
			}
		}
	}
	return out
}

func (l *Layout) String() string {
	return fmt.Sprintf("%s[%d]", l.name, l.size)
}

func (l *Layout) lookup(phase errors.Phase, name string) (*field, error) {
	i, ok := l.index[name]
	if !ok {
		return nil, errors.NotFound(phase, "field", l.name+"."+name)
	}
	return l.fields[i], nil
}

func fingerprint(l *Layout) uint64 {
	buf := make([]byte, 0, 64+16*len(l.fields))
	buf = append(buf, l.name...)
	buf = append(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(l.size))
	for _, f := range l.fields {
		buf = append(buf, f.Name...)
		buf = append(buf, 0)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(f.Span.FirstBit()))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(f.Span.End()))
		buf = append(buf, byte(f.Type.Kind), byte(f.Type.Order))
	}
	return xxHash64.Checksum(buf, 0)
}
