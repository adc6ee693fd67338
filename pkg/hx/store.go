// ABOUTME: Store contract and in-memory append-only arena
// ABOUTME: Entries are looked up by content address or by position
package hx

import (
	"fmt"
	"sync"
)

// Store is a read-only view over a loaded resource graph
type Store interface {
	// Entry returns the entry with the given content address
	Entry(id ID) (*Entry, bool)
	// EntryAt returns the entry at position i in load order
	EntryAt(i int) (*Entry, error)
	Len() int
	Close() error
}

// Memory is an append-only entry arena. Entries are never mutated after
// Append, so readers may hold pointers for the lifetime of the store.
type Memory struct {
	mu      sync.RWMutex
	entries []*Entry
	index   map[ID]int
}

// NewMemory creates an empty store
func NewMemory() *Memory {
	return &Memory{index: make(map[ID]int)}
}

// Append adds an entry; duplicate content addresses are rejected
func (m *Memory) Append(e *Entry) error {
	if e == nil {
		return fmt.Errorf("nil entry")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.index[e.ID]; dup {
		return fmt.Errorf("duplicate entry %s", e.ID)
	}
	m.index[e.ID] = len(m.entries)
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) Entry(id ID) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.entries[i], true
}

func (m *Memory) EntryAt(i int) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.entries) {
		return nil, fmt.Errorf("entry index %d out of range [0,%d): %w", i, len(m.entries), ErrNotFound)
	}
	return m.entries[i], nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}

// Entries returns every entry of a store in load order
func Entries(s Store) []*Entry {
	out := make([]*Entry, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		e, err := s.EntryAt(i)
		if err != nil {
			break
		}
		out = append(out, e)
	}
	return out
}

// Replace returns a copy of src where the entry with e.ID is swapped for e.
// Used by waveform import, which never mutates a live store.
func Replace(src Store, e *Entry) (*Memory, error) {
	if _, ok := src.Entry(e.ID); !ok {
		return nil, fmt.Errorf("replace %s: %w", e.ID, ErrNotFound)
	}
	out := NewMemory()
	for _, cur := range Entries(src) {
		if cur.ID == e.ID {
			cur = e
		}
		if err := out.Append(cur); err != nil {
			return nil, err
		}
	}
	return out, nil
}
