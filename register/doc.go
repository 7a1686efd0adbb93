// Package register defines register types and the buffers that hold them.
//
// A Layout is an ordered list of named field descriptors, each a
// bitfield.Span plus a value type, compiled into accessors once:
//
//	ctrl := register.MustLayout("ctrl",
//		register.Descriptor{Name: "enable", Span: bitfield.Single(0), Type: register.Bool},
//		register.Descriptor{Name: "mode", Span: bitfield.Inclusive(1, 3), Type: register.U8},
//		register.Descriptor{Name: "divisor", Span: bitfield.Range(6, 18), Type: register.U16},
//	)
//
//	r := ctrl.New() // 3 zero bytes
//	r.SetBool("enable", true)
//	r.SetUint("divisor", 600)
//
// The buffer size is derived from the highest bit any field uses. Fields may
// overlap; Overlaps reports such pairs but NewLayout accepts them.
//
// # Struct Tags
//
// LayoutOf derives a layout from a struct type, Pack and Unpack move values
// between structs and registers:
//
//	type Ctrl struct {
//		Enable  bool   `bitfield:"at=0"`
//		Mode    uint8  `bitfield:"from=1,to=3"`
//		Divisor uint16 `bitfield:"from=6,to=17"`
//	}
//
// A field uses at=N for one bit or from=A,to=B for the inclusive range
// [A, B]. Giving both forms, or only one of from and to, is an error.
// Field types implementing bitfield.ByteOrderer (bitfield.BE16 and friends)
// are stored in their declared byte order.
//
// # Truncation
//
// SetUint and Set drop value bits above the field width, matching
// bitfield.Field. SetUintExact returns an overflow error instead.
package register
