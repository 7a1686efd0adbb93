package register

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
)

// Register is a buffer of Layout().Size() bytes with named field access.
// A Register is not safe for concurrent writes.
type Register struct {
	layout *Layout
	data   []byte
}

// New returns an all-zero register.
func (l *Layout) New() *Register {
	return &Register{layout: l, data: make([]byte, l.size)}
}

// FromBytes returns a register holding a copy of b, which must be exactly
// Size() bytes long.
func (l *Layout) FromBytes(b []byte) (*Register, error) {
	if len(b) != l.size {
		return nil, errors.SizeMismatch(errors.PhaseDecode, []string{l.name}, len(b), l.size)
	}
	return &Register{layout: l, data: bytes.Clone(b)}, nil
}

// Layout returns the register type.
func (r *Register) Layout() *Layout { return r.layout }

// Bytes returns a copy of the buffer.
func (r *Register) Bytes() []byte { return bytes.Clone(r.data) }

// CopyTo copies the buffer into dst and returns the number of bytes copied.
func (r *Register) CopyTo(dst []byte) int { return copy(dst, r.data) }

// Clone returns an independent copy of r.
func (r *Register) Clone() *Register {
	return &Register{layout: r.layout, data: bytes.Clone(r.data)}
}

// Equal reports whether both registers share a buffer layout and content.
func (r *Register) Equal(o *Register) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.layout.fingerprint == o.layout.fingerprint && bytes.Equal(r.data, o.data)
}

// Uint reads an unsigned field.
func (r *Register) Uint(name string) (uint64, error) {
	f, err := r.layout.lookup(errors.PhaseDecode, name)
	if err != nil {
		return 0, err
	}
	if f.u == nil {
		return 0, errors.TypeMismatch(errors.PhaseDecode, []string{r.layout.name, name}, "uint64", f.Type.String())
	}
	return f.u.Get(r.data), nil
}

// SetUint writes an unsigned field. Bits of v above the field width are
// dropped.
func (r *Register) SetUint(name string, v uint64) error {
	f, err := r.layout.lookup(errors.PhaseEncode, name)
	if err != nil {
		return err
	}
	if f.u == nil {
		return errors.TypeMismatch(errors.PhaseEncode, []string{r.layout.name, name}, "uint64", f.Type.String())
	}
	f.u.Set(r.data, v)
	return nil
}

// SetUintExact is SetUint that refuses values wider than the field.
func (r *Register) SetUintExact(name string, v uint64) error {
	f, err := r.layout.lookup(errors.PhaseEncode, name)
	if err != nil {
		return err
	}
	if f.u != nil && v > f.max {
		return errors.Overflow(errors.PhaseEncode, []string{r.layout.name, name}, v, f.Span.Len())
	}
	return r.SetUint(name, v)
}

// Bool reads a bool field.
func (r *Register) Bool(name string) (bool, error) {
	f, err := r.layout.lookup(errors.PhaseDecode, name)
	if err != nil {
		return false, err
	}
	if f.b == nil {
		return false, errors.TypeMismatch(errors.PhaseDecode, []string{r.layout.name, name}, "bool", f.Type.String())
	}
	return f.b.Get(r.data), nil
}

// SetBool writes a bool field.
func (r *Register) SetBool(name string, v bool) error {
	f, err := r.layout.lookup(errors.PhaseEncode, name)
	if err != nil {
		return err
	}
	if f.b == nil {
		return errors.TypeMismatch(errors.PhaseEncode, []string{r.layout.name, name}, "bool", f.Type.String())
	}
	f.b.Set(r.data, v)
	return nil
}

// Get reads a field as bool or uint64 depending on its type.
func (r *Register) Get(name string) (any, error) {
	f, err := r.layout.lookup(errors.PhaseDecode, name)
	if err != nil {
		return nil, err
	}
	return f.get(r.data), nil
}

// Set writes a bool to a bool field, or any Go integer to an unsigned field.
// Negative integers are rejected; wide values are truncated.
func (r *Register) Set(name string, v any) error {
	f, err := r.layout.lookup(errors.PhaseEncode, name)
	if err != nil {
		return err
	}
	path := []string{r.layout.name, name}

	rv := reflect.ValueOf(v)
	if f.b != nil {
		if rv.Kind() != reflect.Bool {
			return errors.TypeMismatch(errors.PhaseEncode, path, fmt.Sprintf("%T", v), f.Type.String())
		}
		f.b.Set(r.data, rv.Bool())
		return nil
	}

	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f.u.Set(r.data, rv.Uint())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return errors.Overflow(errors.PhaseEncode, path, n, f.Span.Len())
		}
		f.u.Set(r.data, uint64(n))
	default:
		return errors.TypeMismatch(errors.PhaseEncode, path, fmt.Sprintf("%T", v), f.Type.String())
	}
	return nil
}

// Value is one field of a register with its decoded value.
type Value struct {
	Value any
	Descriptor
}

// Values decodes every field in declaration order.
func (r *Register) Values() []Value {
	out := make([]Value, len(r.layout.fields))
	for i, f := range r.layout.fields {
		out[i] = Value{Descriptor: f.Descriptor, Value: f.get(r.data)}
	}
	return out
}

func (r *Register) String() string {
	var b strings.Builder
	b.WriteString(r.layout.name)
	b.WriteByte('{')
	for i, f := range r.layout.fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", f.Name, f.get(r.data))
	}
	b.WriteByte('}')
	return b.String()
}

func (f *field) get(buf []byte) any {
	if f.b != nil {
		return f.b.Get(buf)
	}
	return f.u.Get(buf)
}

// Read applies a typed field accessor to the register buffer. The field span
// must fit inside the register.
func Read[T any](r *Register, f *bitfield.Field[T]) T {
	return f.Get(r.data)
}

// Write applies a typed field accessor to the register buffer.
func Write[T any](r *Register, f *bitfield.Field[T], v T) {
	f.Set(r.data, v)
}
