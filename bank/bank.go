// Package bank maps register layouts onto a bitreg.Memory and serializes
// access to them.
package bank

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/bitreg"
	"github.com/wippyai/bitreg/errors"
	"github.com/wippyai/bitreg/register"
)

// Mapping places a register layout at a byte offset.
type Mapping struct {
	Layout *register.Layout
	Offset uint32
}

// Name returns the layout name, which is also the register name in the bank.
func (m Mapping) Name() string { return m.Layout.Name() }

// End is the offset one past the last byte of the register.
func (m Mapping) End() uint64 { return uint64(m.Offset) + uint64(m.Layout.Size()) }

func (m Mapping) overlaps(o Mapping) bool {
	return uint64(m.Offset) < o.End() && uint64(o.Offset) < m.End()
}

// Bank is a set of registers mapped onto one memory. All loads and stores go
// through one mutex, so Update is atomic with respect to other bank calls.
// Writes made to the memory behind the bank's back are not synchronized.
type Bank struct {
	mem    bitreg.Memory
	byName map[string]Mapping
	order  []string
	mu     sync.Mutex
}

// New creates an empty bank over mem.
func New(mem bitreg.Memory) *Bank {
	return &Bank{
		mem:    mem,
		byName: make(map[string]Mapping),
	}
}

// Map registers layout at offset. The name must be unique, the byte range
// must not overlap another mapping and must fit the memory when its size is
// known.
func (b *Bank) Map(offset uint32, layout *register.Layout) error {
	if layout == nil {
		return errors.NilPointer(errors.PhaseMemory, nil, "*register.Layout")
	}
	m := Mapping{Layout: layout, Offset: offset}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, dup := b.byName[m.Name()]; dup {
		return errors.Duplicate(errors.PhaseMemory, "register", m.Name())
	}
	if sizer, ok := b.mem.(bitreg.MemorySizer); ok {
		if size := uint64(sizer.Size()); m.End() > size {
			return errors.OutOfBounds(errors.PhaseMemory, []string{m.Name()},
				uint64(offset), uint64(layout.Size()), size)
		}
	}
	for _, name := range b.order {
		other := b.byName[name]
		if m.overlaps(other) {
			return errors.New(errors.PhaseMemory, errors.KindOverlap).
				Path(m.Name()).
				Detail("bytes [%d, %d) overlap %s at [%d, %d)", m.Offset, m.End(), name, other.Offset, other.End()).
				Build()
		}
	}

	b.byName[m.Name()] = m
	b.order = append(b.order, m.Name())
	Logger().Debug("mapped register",
		zap.String("name", m.Name()),
		zap.Uint32("offset", offset),
		zap.Int("size", layout.Size()),
		zap.String("fingerprint", fmt.Sprintf("%016x", layout.Fingerprint())))
	return nil
}

// Mapping returns the mapping of the named register.
func (b *Bank) Mapping(name string) (Mapping, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.byName[name]
	return m, ok
}

// Names returns the register names ordered by offset.
func (b *Bank) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := slices.Clone(b.order)
	slices.SortStableFunc(names, func(x, y string) int {
		return cmp.Compare(b.byName[x].Offset, b.byName[y].Offset)
	})
	return names
}

// Load reads the named register from memory.
func (b *Bank) Load(name string) (*register.Register, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(name)
}

// Store writes r back to the memory slot of its layout.
func (b *Bank) Store(r *register.Register) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(r)
}

// Update loads the named register, passes it to fn and stores the result
// unless fn returns an error. No other bank call runs in between.
func (b *Bank) Update(name string, fn func(r *register.Register) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.load(name)
	if err != nil {
		return err
	}
	if err := fn(r); err != nil {
		return err
	}
	return b.store(r)
}

func (b *Bank) load(name string) (*register.Register, error) {
	m, ok := b.byName[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseMemory, "register", name)
	}
	data, err := b.mem.Read(m.Offset, uint32(m.Layout.Size()))
	if err != nil {
		return nil, err
	}
	Logger().Debug("load register", zap.String("name", name), zap.Binary("data", data))
	return m.Layout.FromBytes(data)
}

func (b *Bank) store(r *register.Register) error {
	if r == nil {
		return errors.NilPointer(errors.PhaseMemory, nil, "*register.Register")
	}
	name := r.Layout().Name()
	m, ok := b.byName[name]
	if !ok {
		return errors.NotFound(errors.PhaseMemory, "register", name)
	}
	if m.Layout.Fingerprint() != r.Layout().Fingerprint() {
		return errors.New(errors.PhaseMemory, errors.KindLayoutMismatch).
			Path(name).
			Detail("register layout %016x, mapped layout %016x", r.Layout().Fingerprint(), m.Layout.Fingerprint()).
			Build()
	}
	data := r.Bytes()
	Logger().Debug("store register", zap.String("name", name), zap.Binary("data", data))
	return b.mem.Write(m.Offset, data)
}
