package history

import (
	"sync"
)

// Memory is an in-process history backend.
//
// It keeps an ordered stack of addresses and a cursor. Push drops any
// forward entries, Replace rewrites the current entry, and Back/Forward
// move the cursor and notify observers with the new address, the same way
// a browser fires popstate. Push and Replace never notify.
type Memory struct {
	mu          sync.Mutex
	entries     []string
	index       int
	unavailable bool
	observers   map[int]func(string)
	nextID      int
}

// NewMemory creates a backend whose only entry is initial.
func NewMemory(initial string) *Memory {
	if initial == "" {
		initial = "/"
	}
	return &Memory{
		entries:   []string{initial},
		observers: make(map[int]func(string)),
	}
}

// Current returns the address of the current entry.
func (m *Memory) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Push appends address after the current entry, discarding forward entries.
func (m *Memory) Push(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	m.entries = append(m.entries[:m.index+1], address)
	m.index++
	return nil
}

// Replace overwrites the current entry.
func (m *Memory) Replace(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	m.entries[m.index] = address
	return nil
}

// Observe registers fn to be called after Back, Forward, Go and Visit.
// The returned function removes the registration.
func (m *Memory) Observe(fn func(address string)) (stop func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Back moves one entry back.
func (m *Memory) Back() error {
	return m.Go(-1)
}

// Forward moves one entry forward.
func (m *Memory) Forward() error {
	return m.Go(1)
}

// Go moves the cursor by delta entries and notifies observers.
// Moving past either end of the stack is a no-op, as in browsers.
func (m *Memory) Go(delta int) error {
	m.mu.Lock()
	if m.unavailable {
		m.mu.Unlock()
		return ErrUnavailable
	}
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return nil
	}
	m.index = target
	address := m.entries[target]
	observers := m.snapshotObservers()
	m.mu.Unlock()

	for _, fn := range observers {
		fn(address)
	}
	return nil
}

// Visit simulates the user typing address into the address bar of an
// already loaded application: a new entry is pushed and observers are
// notified.
func (m *Memory) Visit(address string) error {
	m.mu.Lock()
	if m.unavailable {
		m.mu.Unlock()
		return ErrUnavailable
	}
	m.entries = append(m.entries[:m.index+1], address)
	m.index++
	observers := m.snapshotObservers()
	m.mu.Unlock()

	for _, fn := range observers {
		fn(address)
	}
	return nil
}

// SetAvailable toggles whether mutations succeed. An unavailable backend
// behaves like a sandboxed document that refuses history changes.
func (m *Memory) SetAvailable(ok bool) {
	m.mu.Lock()
	m.unavailable = !ok
	m.mu.Unlock()
}

// Entries returns a copy of the stack and the cursor position.
func (m *Memory) Entries() ([]string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries...), m.index
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) snapshotObservers() []func(string) {
	fns := make([]func(string), 0, len(m.observers))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
