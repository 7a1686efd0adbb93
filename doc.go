// Package bitreg packs and unpacks named bit fields inside fixed-size byte
// buffers such as hardware or protocol registers.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	bitreg/              Root package with the Memory and MemorySizer interfaces
//	├── bitfield/        Bit spans, value codecs and compiled field accessors
//	├── register/        Register layouts, register buffers and struct tags
//	├── memory/          Memory implementations (host slice, wazero linear memory)
//	├── bank/            Registers mapped at offsets of a Memory
//	├── regdef/          YAML and WIT flags register definitions
//	├── snapshot/        CBOR snapshots of register contents
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Describe a register with struct tags and pack a value:
//
//	type Ctrl struct {
//	    Enable bool  `bitfield:"at=0"`
//	    Mode   uint8 `bitfield:"from=1,to=3"`
//	}
//
//	r, err := register.Pack(Ctrl{Enable: true, Mode: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%08b\n", r.Bytes()) // [00001011]
//
// Or compile a single field and apply it to any buffer:
//
//	mode := bitfield.MustField(bitfield.Range(6, 10), bitfield.Uint[uint8]())
//	buf := make([]byte, 2)
//	mode.Set(buf, 0b1111) // [0b11000000, 0b00000011]
//
// # Bit Order
//
// Bit 0 is the least significant bit of byte 0, bit 8 the least significant
// bit of byte 1. The order is fixed. Multi-byte values are least significant
// byte first unless their type declares otherwise (bitfield.BE16 and friends).
//
// # Thread Safety
//
// Layouts and compiled fields are immutable and safe for concurrent use.
// Register is NOT thread-safe; bank.Bank serializes access to mapped
// registers.
package bitreg
