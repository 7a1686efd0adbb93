package memory

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/bitreg"
	"github.com/wippyai/bitreg/errors"
)

// Wrap wraps a wazero api.Memory to implement bitreg.Memory.
func Wrap(mem api.Memory) *Wrapper {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

var (
	_ bitreg.Memory      = (*Wrapper)(nil)
	_ bitreg.MemorySizer = (*Wrapper)(nil)
	_ bitreg.Memory      = (*Slice)(nil)
	_ bitreg.MemorySizer = (*Slice)(nil)
)

// Wrapper adapts wazero api.Memory to the bitreg.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Read reads bytes from memory. The result aliases guest memory.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMemory, nil, uint64(offset), uint64(length), uint64(m.Mem.Size()))
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMemory, nil, uint64(offset), uint64(len(data)), uint64(m.Mem.Size()))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}
