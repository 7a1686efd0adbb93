package bank

import (
	"bytes"
	stderrors "errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/bitreg/bitfield"
	"github.com/wippyai/bitreg/errors"
	"github.com/wippyai/bitreg/memory"
	"github.com/wippyai/bitreg/register"
)

var (
	ctrl = register.MustLayout("ctrl",
		register.Descriptor{Name: "enable", Span: bitfield.Single(0), Type: register.Bool},
		register.Descriptor{Name: "mode", Span: bitfield.Inclusive(1, 3), Type: register.U8},
	)
	count = register.MustLayout("count",
		register.Descriptor{Name: "value", Span: bitfield.Range(0, 16), Type: register.U16},
	)
)

func isKind(err error, kind errors.Kind) bool {
	return stderrors.Is(err, &errors.Error{Phase: errors.PhaseMemory, Kind: kind})
}

func TestBank_Map(t *testing.T) {
	b := New(memory.NewSlice(8))

	if err := b.Map(0, ctrl); err != nil {
		t.Fatalf("Map ctrl: %v", err)
	}
	if err := b.Map(4, count); err != nil {
		t.Fatalf("Map count: %v", err)
	}

	tests := []struct {
		name   string
		offset uint32
		layout *register.Layout
		kind   errors.Kind
	}{
		{"duplicate", 2, ctrl, errors.KindDuplicate},
		{"overlap", 5, register.MustLayout("other", count.Fields()...), errors.KindOverlap},
		{"out of bounds", 7, register.MustLayout("tail", count.Fields()...), errors.KindOutOfBounds},
		{"nil layout", 0, nil, errors.KindNilPointer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Map(tt.offset, tt.layout); !isKind(err, tt.kind) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}

	if err := b.Map(2, register.MustLayout("gap", count.Fields()...)); err != nil {
		t.Errorf("adjacent mapping: %v", err)
	}

	names := b.Names()
	want := []string{"ctrl", "gap", "count"}
	if len(names) != len(want) {
		t.Fatalf("Names: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names: got %v, want %v", names, want)
			break
		}
	}

	m, ok := b.Mapping("count")
	if !ok || m.Offset != 4 || m.End() != 6 {
		t.Errorf("Mapping(count): got %+v, %v", m, ok)
	}
}

func TestBank_LoadStore(t *testing.T) {
	mem := memory.FromBytes([]byte{0b1011, 0, 0x34, 0x12})
	b := New(mem)
	if err := b.Map(0, ctrl); err != nil {
		t.Fatal(err)
	}
	if err := b.Map(2, count); err != nil {
		t.Fatal(err)
	}

	r, err := b.Load("ctrl")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mode, _ := r.Uint("mode"); mode != 0b101 {
		t.Errorf("mode: got %#b, want 0b101", mode)
	}

	c, err := b.Load("count")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := c.Uint("value"); v != 0x1234 {
		t.Errorf("value: got %#x, want 0x1234", v)
	}

	_ = r.SetBool("enable", false)
	if err := b.Store(r); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !bytes.Equal(mem.Bytes(), []byte{0b1010, 0, 0x34, 0x12}) {
		t.Errorf("memory: got %08b", mem.Bytes())
	}

	if _, err := b.Load("nope"); !isKind(err, errors.KindNotFound) {
		t.Errorf("Load(nope): got %v", err)
	}

	stranger := register.MustLayout("ctrl", count.Fields()...).New()
	if err := b.Store(stranger); !isKind(err, errors.KindLayoutMismatch) {
		t.Errorf("Store(stranger): got %v", err)
	}
}

func TestBank_Update(t *testing.T) {
	mem := memory.NewSlice(2)
	b := New(mem)
	if err := b.Map(0, count); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Update("count", func(r *register.Register) error {
				v, err := r.Uint("value")
				if err != nil {
					return err
				}
				return r.SetUint("value", v+1)
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	r, _ := b.Load("count")
	if v, _ := r.Uint("value"); v != 50 {
		t.Errorf("got %d, want 50", v)
	}

	boom := stderrors.New("boom")
	err := b.Update("count", func(r *register.Register) error {
		_ = r.SetUint("value", 0)
		return boom
	})
	if !stderrors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
	if r, _ := b.Load("count"); r.String() != "count{value=50}" {
		t.Errorf("failed update was stored: %s", r)
	}
}

func TestBank_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	b := New(memory.NewSlice(4))
	if err := b.Map(1, ctrl); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Load("ctrl"); err != nil {
		t.Fatal(err)
	}

	if n := logs.FilterMessage("mapped register").Len(); n != 1 {
		t.Errorf("mapped register: got %d entries, want 1", n)
	}
	if n := logs.FilterMessage("load register").Len(); n != 1 {
		t.Errorf("load register: got %d entries, want 1", n)
	}
}
