package register

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
)

// TagName is the struct tag read by LayoutOf.
const TagName = "bitfield"

var byteOrdererType = reflect.TypeOf((*bitfield.ByteOrderer)(nil)).Elem()

// binding maps layout fields back to struct fields.
type binding struct {
	layout *Layout
	index  [][]int
}

// Parsed per struct type, shared by all callers.
var bindings sync.Map // reflect.Type -> *binding

// LayoutOf returns the layout described by the bitfield tags of a struct
// value or struct pointer. Fields are tagged with either a single bit
//
//	Enable bool `bitfield:"at=0"`
//
// or an inclusive bit range
//
//	Mode uint8 `bitfield:"from=1,to=3"`
//
// and may rename themselves with name=. Untagged fields and fields tagged
// "-" are skipped.
func LayoutOf(v any) (*Layout, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, errors.NilPointer(errors.PhaseBind, nil, "any")
	}
	b, err := bind(t)
	if err != nil {
		return nil, err
	}
	return b.layout, nil
}

// MustLayoutOf is LayoutOf for package-level declarations.
func MustLayoutOf(v any) *Layout {
	l, err := LayoutOf(v)
	if err != nil {
		panic(err)
	}
	return l
}

func bind(t reflect.Type) (*binding, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := bindings.Load(t); ok {
		return cached.(*binding), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Unsupported(errors.PhaseBind, fmt.Sprintf("%s is not a struct", t))
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}

	var descs []Descriptor
	var index [][]int
	for _, sf := range reflect.VisibleFields(t) {
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" || sf.Anonymous {
			continue
		}
		path := []string{name, sf.Name}
		if !sf.IsExported() {
			return nil, errors.New(errors.PhaseBind, errors.KindUnsupported).
				Path(path...).
				Detail("tagged field is not exported").
				Build()
		}

		d, err := parseTag(path, tag)
		if err != nil {
			return nil, err
		}
		if d.Name == "" {
			d.Name = sf.Name
		}
		d.Type, err = valueTypeOf(path, sf.Type)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
		index = append(index, sf.Index)
	}

	l, err := NewLayout(name, descs...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBind, errors.KindInvalidInput, err, "struct "+t.String())
	}
	b := &binding{layout: l, index: index}
	actual, _ := bindings.LoadOrStore(t, b)
	return actual.(*binding), nil
}

// parseTag reads at=N, from=A,to=B and name=S.
func parseTag(path []string, tag string) (Descriptor, error) {
	var d Descriptor
	var at, from, to *uint8

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok {
			return d, errors.InvalidInput(errors.PhaseBind, path, fmt.Sprintf("tag option %q has no value", part))
		}

		var dst **uint8
		switch key {
		case "name":
			d.Name = val
			continue
		case "at":
			dst = &at
		case "from":
			dst = &from
		case "to":
			dst = &to
		default:
			return d, errors.InvalidInput(errors.PhaseBind, path, fmt.Sprintf("unknown tag option %q", key))
		}

		n, err := strconv.ParseUint(val, 0, 8)
		if err != nil {
			return d, errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Path(path...).
				Cause(err).
				Detail("tag option %s=%q is not a bit index", key, val).
				Build()
		}
		bit := uint8(n)
		*dst = &bit
	}

	span, err := spanOf(path, errors.PhaseBind, at, from, to)
	if err != nil {
		return d, err
	}
	d.Span = span
	return d, nil
}

// spanOf applies the annotation rules: at alone, or from and to together.
func spanOf(path []string, phase errors.Phase, at, from, to *uint8) (bitfield.Span, error) {
	switch {
	case at != nil && (from != nil || to != nil):
		return bitfield.Span{}, errors.New(phase, errors.KindConflictingParams).
			Path(path...).
			Detail("at cannot be combined with from/to").
			Build()
	case at != nil:
		return bitfield.Single(*at), nil
	case from != nil && to != nil:
		if *from > *to {
			return bitfield.Span{}, errors.InvalidSpan(phase, path,
				fmt.Sprintf("from %d is after to %d", *from, *to))
		}
		return bitfield.Inclusive(*from, *to), nil
	case from != nil:
		return bitfield.Span{}, errors.New(phase, errors.KindMissingParams).
			Path(path...).
			Detail("from needs a matching to").
			Build()
	case to != nil:
		return bitfield.Span{}, errors.New(phase, errors.KindMissingParams).
			Path(path...).
			Detail("to needs a matching from").
			Build()
	}
	return bitfield.Span{}, errors.New(phase, errors.KindMissingParams).
		Path(path...).
		Detail("expected at, or from and to").
		Build()
}

// SpanOf builds a span from optional at/from/to parameters with the same
// rules as struct tags.
func SpanOf(at, from, to *uint8) (bitfield.Span, error) {
	return spanOf(nil, errors.PhaseDefine, at, from, to)
}

func valueTypeOf(path []string, t reflect.Type) (ValueType, error) {
	var vt ValueType
	switch t.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Uint8:
		vt.Kind = KindU8
	case reflect.Uint16:
		vt.Kind = KindU16
	case reflect.Uint32:
		vt.Kind = KindU32
	case reflect.Uint64:
		vt.Kind = KindU64
	default:
		return vt, errors.New(errors.PhaseBind, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("field must be bool or a sized unsigned integer").
			Build()
	}
	if t.Implements(byteOrdererType) {
		vt.Order = reflect.Zero(t).Interface().(bitfield.ByteOrderer).BitfieldByteOrder()
	}
	return vt, nil
}

// Pack builds a register from a tagged struct value or pointer.
func Pack(v any) (*Register, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, errors.NilPointer(errors.PhaseEncode, nil, "any")
	}
	b, err := bind(rv.Type())
	if err != nil {
		return nil, err
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.NilPointer(errors.PhaseEncode, []string{b.layout.name}, rv.Type().String())
		}
		rv = rv.Elem()
	}

	r := b.layout.New()
	for i, f := range b.layout.fields {
		fv, ok := fieldByIndex(rv, b.index[i], false)
		if !ok {
			return nil, errors.NilPointer(errors.PhaseEncode, []string{b.layout.name, f.Name}, embeddedType(rv.Type(), b.index[i]))
		}
		if f.b != nil {
			f.b.Set(r.data, fv.Bool())
		} else {
			f.u.Set(r.data, fv.Uint())
		}
	}
	return r, nil
}

// Unpack decodes the register into the tagged struct dst points to. Every
// tagged field must exist in the register with the same span and type.
func (r *Register) Unpack(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, []string{r.layout.name}, fmt.Sprintf("%T", dst))
	}
	b, err := bind(rv.Type())
	if err != nil {
		return err
	}
	rv = rv.Elem()

	for i, want := range b.layout.fields {
		have, err := r.layout.lookup(errors.PhaseDecode, want.Name)
		if err != nil {
			return err
		}
		if !sameBits(have.Span, want.Span) || have.Type != want.Type {
			return errors.New(errors.PhaseDecode, errors.KindLayoutMismatch).
				Path(r.layout.name, want.Name).
				Detail("register has %s, struct wants %s %s", have.Descriptor, want.Span, want.Type).
				Build()
		}

		fv, ok := fieldByIndex(rv, b.index[i], true)
		if !ok {
			return errors.NilPointer(errors.PhaseDecode, []string{r.layout.name, want.Name}, embeddedType(rv.Type(), b.index[i]))
		}
		if have.b != nil {
			fv.SetBool(have.b.Get(r.data))
		} else {
			fv.SetUint(have.u.Get(r.data))
		}
	}
	return nil
}

// fieldByIndex is reflect.Value.FieldByIndex without the panic on nil
// embedded pointers. With alloc set, settable nil pointers are allocated.
func fieldByIndex(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc || !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// embeddedType names the embedded pointer type on the path to index.
func embeddedType(t reflect.Type, index []int) string {
	name := t.String()
	for _, x := range index[:len(index)-1] {
		sf := t.Field(x)
		t = sf.Type
		if t.Kind() == reflect.Pointer {
			name = t.String()
			t = t.Elem()
		}
	}
	return name
}

// sameBits reports whether two spans cover the same bits, whatever form
// they were declared in.
func sameBits(a, b bitfield.Span) bool {
	return a.FirstBit() == b.FirstBit() && a.End() == b.End()
}
