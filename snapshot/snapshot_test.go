package snapshot

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
	"github.com/wippyai/bitreg/register"
)

var ctrl = register.MustLayout("ctrl",
	register.Descriptor{Name: "enable", Span: bitfield.Single(0), Type: register.Bool},
	register.Descriptor{Name: "mode", Span: bitfield.Inclusive(1, 3), Type: register.U8},
	register.Descriptor{Name: "divisor", Span: bitfield.Range(6, 18), Type: register.U16},
)

func sampleRegister(t *testing.T) *register.Register {
	t.Helper()
	r := ctrl.New()
	if err := r.SetBool("enable", true); err != nil {
		t.Fatal(err)
	}
	if err := r.SetUint("divisor", 1234); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestEncodeDecode(t *testing.T) {
	r := sampleRegister(t)

	data, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != 0xA4 {
		t.Errorf("expected a 4-entry map, got header %#x", data[0])
	}

	again, _ := Encode(r.Clone())
	if !bytes.Equal(data, again) {
		t.Error("encoding is not deterministic")
	}

	got, err := Decode(ctrl, data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(r) {
		t.Errorf("got %s, want %s", got, r)
	}
}

func TestSnapshot_IntegerKeys(t *testing.T) {
	data, err := Encode(sampleRegister(t))
	if err != nil {
		t.Fatal(err)
	}

	var raw map[int]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw[1] != "ctrl" {
		t.Errorf("key 1: got %v, want ctrl", raw[1])
	}
	if raw[2] != ctrl.Fingerprint() {
		t.Errorf("key 2: got %v, want %d", raw[2], ctrl.Fingerprint())
	}
	if raw[3] != uint64(3) {
		t.Errorf("key 3: got %v (%T), want 3", raw[3], raw[3])
	}
	if b, ok := raw[4].([]byte); !ok || len(b) != 3 {
		t.Errorf("key 4: got %v", raw[4])
	}
}

func TestDecode_Mismatch(t *testing.T) {
	data, err := Encode(sampleRegister(t))
	if err != nil {
		t.Fatal(err)
	}

	renamed := register.MustLayout("ctrl2", ctrl.Fields()...)
	fields := ctrl.Fields()
	fields[1].Span = bitfield.Inclusive(1, 4)
	moved := register.MustLayout("ctrl", fields...)

	target := &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindLayoutMismatch}
	for _, l := range []*register.Layout{renamed, moved} {
		if _, err := Decode(l, data); !stderrors.Is(err, target) {
			t.Errorf("%s: got %v, want layout mismatch", l, err)
		}
	}
}

func TestDecode_Corrupt(t *testing.T) {
	target := &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}

	if _, err := Decode(ctrl, []byte{0xFF, 0x00}); !stderrors.Is(err, target) {
		t.Errorf("garbage: got %v", err)
	}

	s := Of(sampleRegister(t))
	s.Data = s.Data[:2]
	data, err := encMode.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(ctrl, data); !stderrors.Is(err, target) {
		t.Errorf("short data: got %v", err)
	}

	if _, err := Decode(nil, data); err == nil {
		t.Error("expected error for nil layout")
	}
}

func TestWriteRead(t *testing.T) {
	r := sampleRegister(t)

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf, ctrl)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v, _ := got.Uint("divisor"); v != 1234 {
		t.Errorf("divisor: got %d, want 1234", v)
	}

	if err := Write(&buf, nil); err == nil {
		t.Error("expected error for nil register")
	}
}
