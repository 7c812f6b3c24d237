// Package custody carries the vault key across a pending second factor
// challenge. The key is exported once into a session scoped slot that lives
// in process memory only and is emptied on resume, failure or cancellation.
package custody

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

var ErrSlotEmpty = errors.New("transport slot is empty")

// Slot holds at most one transportable key.
type Slot interface {
	// Put replaces the slot content. value is wiped.
	Put(value []byte) error
	// Take returns the content and empties the slot.
	Take() ([]byte, error)
	Clear()
	Occupied() bool
}

// MemorySlot keeps its content sealed in a memguard enclave.
type MemorySlot struct {
	mu      sync.Mutex
	enclave *memguard.Enclave
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Put(value []byte) error {
	if len(value) == 0 {
		return ErrSlotEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enclave = memguard.NewEnclave(value)
	return nil
}

func (s *MemorySlot) Take() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enclave == nil {
		return nil, ErrSlotEmpty
	}
	enclave := s.enclave
	s.enclave = nil

	buf, err := enclave.Open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	out := make([]byte, buf.Size())
	copy(out, buf.Bytes())
	return out, nil
}

func (s *MemorySlot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enclave = nil
}

func (s *MemorySlot) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enclave != nil
}
