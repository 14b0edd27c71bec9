// ABOUTME: Lifecycle manager for the process-wide store handle
// ABOUTME: Lazily opens one handle; use before Init fails with ErrNotInitialized

package store

import (
	"fmt"
	"sync"
)

// Manager owns the single store handle for the process. The storage engine
// exposes a single-connection-per-process model, so the handle is opened once
// and injected into callers rather than accessed as ambient global state.
// Tests substitute a per-case instance by constructing their own Manager.
type Manager struct {
	mu    sync.Mutex
	store *SQLiteStore
}

// NewManager returns an uninitialized lifecycle manager.
func NewManager() *Manager {
	return &Manager{}
}

// Init opens the store at path. Calling Init on an already-initialized
// manager is an error; it never silently creates a second handle.
func (m *Manager) Init(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		return fmt.Errorf("store already initialized")
	}
	s, err := NewSQLiteStore(path)
	if err != nil {
		return err
	}
	m.store = s
	return nil
}

// Get returns the open store handle, or ErrNotInitialized before Init.
func (m *Manager) Get() (*SQLiteStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return nil, ErrNotInitialized
	}
	return m.store, nil
}

// Teardown closes the handle and returns the manager to its initial state.
// Safe to call when never initialized.
func (m *Manager) Teardown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}
