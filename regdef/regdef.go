// Package regdef loads register definitions from YAML files and WIT flags
// types and turns them into register layouts.
//
// A definition file lists registers with an optional offset and their
// fields:
//
//	registers:
//	  - name: ctrl
//	    offset: 0x10
//	    fields:
//	      - {name: enable, at: 0, type: bool}
//	      - {name: mode, from: 1, to: 3}
//	      - {name: divisor, from: 8, to: 23, type: u16be}
//
// A field has either at (one bit) or from and to (inclusive bit range). The
// type defaults to the narrowest unsigned kind that holds the span.
package regdef

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitreg/bank"
	"github.com/wippyai/bitreg/errors"
	"github.com/wippyai/bitreg/register"
)

// File is a parsed definition file.
type File struct {
	Registers []RegisterDef `yaml:"registers"`
}

// RegisterDef defines one register and where it is mapped.
type RegisterDef struct {
	Name   string     `yaml:"name"`
	Doc    string     `yaml:"doc,omitempty"`
	Fields []FieldDef `yaml:"fields"`
	Offset uint32     `yaml:"offset"`
}

// FieldDef defines one field.
type FieldDef struct {
	At   *uint8 `yaml:"at,omitempty"`
	From *uint8 `yaml:"from,omitempty"`
	To   *uint8 `yaml:"to,omitempty"`
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
	Doc  string `yaml:"doc,omitempty"`
}

// Parse parses a definition file from YAML bytes. Unknown keys are errors.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("register definitions", err)
	}
	Logger().Debug("parsed register definitions", zap.Int("registers", len(f.Registers)))
	return &f, nil
}

// Load loads and parses a definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read "+path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	Logger().Debug("loaded register definitions", zap.String("path", path))
	return f, nil
}

// Descriptor converts the field definition into a register descriptor.
func (d FieldDef) Descriptor() (register.Descriptor, error) {
	span, err := register.SpanOf(d.At, d.From, d.To)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = []string{d.Name}
		}
		return register.Descriptor{}, err
	}

	var vt register.ValueType
	if d.Type == "" {
		vt.Kind = register.Fits(span.Len())
	} else if vt, err = register.ParseValueType(d.Type); err != nil {
		return register.Descriptor{}, err
	}
	return register.Descriptor{Name: d.Name, Span: span, Type: vt}, nil
}

// Layout compiles the register definition.
func (r RegisterDef) Layout() (*register.Layout, error) {
	descs := make([]register.Descriptor, 0, len(r.Fields))
	for _, fd := range r.Fields {
		d, err := fd.Descriptor()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err,
				fmt.Sprintf("register %s field %s", r.Name, fd.Name))
		}
		descs = append(descs, d)
	}
	l, err := register.NewLayout(r.Name, descs...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "register "+r.Name)
	}
	if overlaps := l.Overlaps(); len(overlaps) > 0 {
		Logger().Debug("register has overlapping fields",
			zap.String("register", r.Name), zap.Any("pairs", overlaps))
	}
	return l, nil
}

// Layouts compiles every register in file order.
func (f *File) Layouts() ([]*register.Layout, error) {
	out := make([]*register.Layout, 0, len(f.Registers))
	for _, r := range f.Registers {
		l, err := r.Layout()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Register returns the definition with the given name.
func (f *File) Register(name string) (RegisterDef, bool) {
	for _, r := range f.Registers {
		if r.Name == name {
			return r, true
		}
	}
	return RegisterDef{}, false
}

// Layout compiles the named register.
func (f *File) Layout(name string) (*register.Layout, error) {
	r, ok := f.Register(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "register", name)
	}
	return r.Layout()
}

// MapInto compiles every register and maps it into b at its offset.
func (f *File) MapInto(b *bank.Bank) error {
	for _, r := range f.Registers {
		l, err := r.Layout()
		if err != nil {
			return err
		}
		if err := b.Map(r.Offset, l); err != nil {
			return err
		}
	}
	return nil
}
