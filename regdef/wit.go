package regdef

import (
	"fmt"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
	"github.com/wippyai/bitreg/register"
)

// maxFlags is the widest flags type a layout can hold.
const maxFlags = 256

// FromFlags builds a layout with one bool field per flag: flag i is bit i.
// This is the canonical ABI flags packing, except that the layout size is
// ceil(n/8) bytes while the canonical ABI rounds flags wider than 16 up to
// whole 32-bit words.
func FromFlags(name string, flags *wit.Flags) (*register.Layout, error) {
	if flags == nil {
		return nil, errors.NilPointer(errors.PhaseLoad, []string{name}, "*wit.Flags")
	}
	if n := len(flags.Flags); n > maxFlags {
		return nil, errors.Unsupported(errors.PhaseLoad,
			fmt.Sprintf("flags %s has %d flags, at most %d fit a register", name, n, maxFlags))
	}

	descs := make([]register.Descriptor, len(flags.Flags))
	for i, f := range flags.Flags {
		descs[i] = register.Descriptor{
			Name: f.Name,
			Span: bitfield.Single(uint8(i)),
			Type: register.Bool,
		}
	}
	l, err := register.NewLayout(name, descs...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "flags "+name)
	}
	Logger().Debug("flags layout", zap.String("name", name), zap.Int("flags", len(descs)))
	return l, nil
}

// FromTypeDef builds a layout from a named WIT flags type.
func FromTypeDef(td *wit.TypeDef) (*register.Layout, error) {
	if td == nil {
		return nil, errors.NilPointer(errors.PhaseLoad, nil, "*wit.TypeDef")
	}
	if td.Name == nil || *td.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, nil, "flags type has no name")
	}
	flags, ok := td.Kind.(*wit.Flags)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseLoad,
			fmt.Sprintf("type %s is %T, only flags map to registers", *td.Name, td.Kind))
	}
	return FromFlags(*td.Name, flags)
}

// Definition converts the flags into a register definition that can be
// written back out as YAML.
func Definition(name string, offset uint32, flags *wit.Flags) (RegisterDef, error) {
	l, err := FromFlags(name, flags)
	if err != nil {
		return RegisterDef{}, err
	}
	def := RegisterDef{Name: l.Name(), Offset: offset}
	for _, d := range l.Fields() {
		bit := uint8(d.Span.FirstBit())
		def.Fields = append(def.Fields, FieldDef{Name: d.Name, At: &bit, Type: d.Type.String()})
	}
	return def, nil
}
