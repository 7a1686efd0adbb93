package register

import (
	"fmt"
	"strings"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
)

// Kind is the value kind of a field
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindU8
	KindU16
	KindU32
	KindU64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Width is the number of value bytes the kind can carry
func (k Kind) Width() int {
	switch k {
	case KindBool, KindU8:
		return 1
	case KindU16:
		return 2
	case KindU32:
		return 4
	case KindU64:
		return 8
	}
	return 0
}

// ValueType is the value kind plus the byte order of its value bytes
type ValueType struct {
	Kind  Kind
	Order bitfield.ByteOrder
}

// Common value types
var (
	Bool  = ValueType{Kind: KindBool}
	U8    = ValueType{Kind: KindU8}
	U16   = ValueType{Kind: KindU16}
	U32   = ValueType{Kind: KindU32}
	U64   = ValueType{Kind: KindU64}
	U16BE = ValueType{Kind: KindU16, Order: bitfield.MSBFirst}
	U32BE = ValueType{Kind: KindU32, Order: bitfield.MSBFirst}
	U64BE = ValueType{Kind: KindU64, Order: bitfield.MSBFirst}
)

// String returns the name accepted by ParseValueType
func (t ValueType) String() string {
	if t.Order == bitfield.MSBFirst {
		return t.Kind.String() + "be"
	}
	return t.Kind.String()
}

// ParseValueType parses "bool", "u8", "u16", "u32", "u64" with an optional
// "le" or "be" suffix on the multi-byte kinds.
func ParseValueType(s string) (ValueType, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	order := bitfield.LSBFirst
	suffixed := false
	switch {
	case strings.HasSuffix(name, "be"):
		order, suffixed = bitfield.MSBFirst, true
		name = strings.TrimSuffix(name, "be")
	case strings.HasSuffix(name, "le"):
		suffixed = true
		name = strings.TrimSuffix(name, "le")
	}

	var k Kind
	for i, n := range kindNames {
		if i != int(KindInvalid) && n == name {
			k = Kind(i)
		}
	}
	if k == KindInvalid {
		return ValueType{}, errors.InvalidInput(errors.PhaseDefine, nil,
			fmt.Sprintf("unknown value type %q", s))
	}
	if suffixed && k.Width() == 1 {
		return ValueType{}, errors.InvalidInput(errors.PhaseDefine, nil,
			fmt.Sprintf("value type %q is one byte wide and has no byte order", s))
	}
	return ValueType{Kind: k, Order: order}, nil
}

// Fits returns the narrowest unsigned kind that carries n bits
func Fits(n int) Kind {
	switch {
	case n <= 8:
		return KindU8
	case n <= 16:
		return KindU16
	case n <= 32:
		return KindU32
	case n <= 64:
		return KindU64
	}
	return KindInvalid
}

// Descriptor names a span and the type of the value stored there
type Descriptor struct {
	Name string
	Span bitfield.Span
	Type ValueType
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s %s", d.Name, d.Span, d.Type)
}
