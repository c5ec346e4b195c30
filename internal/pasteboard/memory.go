package pasteboard

import "sync"

// Memory is an in-process pasteboard. It keeps any type identifier.
type Memory struct {
	mu     sync.Mutex
	items  []Item
	writes int
}

// NewMemory returns a pasteboard pre-filled with items
func NewMemory(items ...Item) *Memory {
	m := &Memory{}
	for _, it := range items {
		m.items = append(m.items, it.Clone())
	}
	return m
}

func (m *Memory) Items() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Item, len(m.items))
	for i, it := range m.items {
		out[i] = it.Clone()
	}
	return out, nil
}

func (m *Memory) Replace(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	for _, it := range items {
		m.items = append(m.items, it.Clone())
	}
	m.writes++
	return nil
}

// Writes reports how many times Replace was called
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
