// Package snapshot serializes register contents to CBOR, tagged with the
// identity of the layout that produced them.
//
// A snapshot only decodes into a layout with the same name, fingerprint and
// size, so a saved buffer is never reinterpreted under a different field
// layout.
package snapshot

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/bitreg/errors"
	"github.com/wippyai/bitreg/register"
)

// encMode is configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Snapshot is the wire form of a register.
type Snapshot struct {
	Layout      string `cbor:"1,keyasint"`
	Data        []byte `cbor:"4,keyasint"`
	Fingerprint uint64 `cbor:"2,keyasint"`
	Size        uint32 `cbor:"3,keyasint"`
}

// Of captures the register.
func Of(r *register.Register) Snapshot {
	l := r.Layout()
	return Snapshot{
		Layout:      l.Name(),
		Fingerprint: l.Fingerprint(),
		Size:        uint32(l.Size()),
		Data:        r.Bytes(),
	}
}

// Restore checks the snapshot against layout and returns the register.
func (s Snapshot) Restore(layout *register.Layout) (*register.Register, error) {
	if layout == nil {
		return nil, errors.NilPointer(errors.PhaseLoad, nil, "*register.Layout")
	}
	switch {
	case s.Layout != layout.Name():
		return nil, mismatch(layout, "snapshot of %q", s.Layout)
	case s.Fingerprint != layout.Fingerprint():
		return nil, mismatch(layout, "fingerprint %016x, layout has %016x", s.Fingerprint, layout.Fingerprint())
	case int(s.Size) != layout.Size():
		return nil, mismatch(layout, "size %d, layout has %d", s.Size, layout.Size())
	case len(s.Data) != int(s.Size):
		return nil, errors.InvalidData(errors.PhaseLoad, []string{layout.Name()},
			fmt.Sprintf("snapshot carries %d bytes, header says %d", len(s.Data), s.Size))
	}
	return layout.FromBytes(s.Data)
}

func mismatch(layout *register.Layout, format string, args ...any) error {
	return errors.New(errors.PhaseLoad, errors.KindLayoutMismatch).
		Path(layout.Name()).
		Detail(format, args...).
		Build()
}

// Encode encodes the register as a CBOR snapshot.
func Encode(r *register.Register) ([]byte, error) {
	if r == nil {
		return nil, errors.NilPointer(errors.PhaseEncode, nil, "*register.Register")
	}
	data, err := encMode.Marshal(Of(r))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode snapshot")
	}
	return data, nil
}

// Decode decodes a CBOR snapshot into a register of layout.
func Decode(layout *register.Layout, data []byte) (*register.Register, error) {
	var s Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, errors.ParseFailed("snapshot", err)
	}
	return s.Restore(layout)
}

// Write encodes the register to w.
func Write(w io.Writer, r *register.Register) error {
	if r == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, "*register.Register")
	}
	if err := encMode.NewEncoder(w).Encode(Of(r)); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "write snapshot")
	}
	return nil
}

// Read decodes a snapshot from rd into a register of layout. The decoder
// may read ahead, so rd should hold nothing after the snapshot.
func Read(rd io.Reader, layout *register.Layout) (*register.Register, error) {
	var s Snapshot
	if err := decMode.NewDecoder(rd).Decode(&s); err != nil {
		return nil, errors.ParseFailed("snapshot", err)
	}
	return s.Restore(layout)
}
