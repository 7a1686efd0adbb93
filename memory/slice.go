package memory

import (
	"bytes"
	"sync"

	"github.com/wippyai/bitreg/errors"
)

// Slice is a fixed-size Memory backed by a Go byte slice.
type Slice struct {
	buf []byte
	mu  sync.RWMutex
}

// NewSlice returns size zero bytes of memory.
func NewSlice(size uint32) *Slice {
	return &Slice{buf: make([]byte, size)}
}

// FromBytes returns a memory holding a copy of b.
func FromBytes(b []byte) *Slice {
	return &Slice{buf: bytes.Clone(b)}
}

// Read returns a copy of length bytes at offset.
func (s *Slice) Read(offset uint32, length uint32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(offset, length); err != nil {
		return nil, err
	}
	return bytes.Clone(s.buf[offset : offset+length]), nil
}

// Write copies data to offset.
func (s *Slice) Write(offset uint32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(s.buf[offset:], data)
	return nil
}

// Size returns the memory size in bytes.
func (s *Slice) Size() uint32 {
	return uint32(len(s.buf))
}

// Bytes returns a copy of the whole memory.
func (s *Slice) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.buf)
}

func (s *Slice) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(s.buf)) {
		return errors.OutOfBounds(errors.PhaseMemory, nil, uint64(offset), uint64(length), uint64(len(s.buf)))
	}
	return nil
}
