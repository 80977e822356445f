package pushbridge

import "sync"

// Mutex serialises access to a group of fields that must change together.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex creates a new mutex
func NewMutex() *Mutex {
	return &Mutex{}
}

// RunAtomic executes a task with exclusive lock
func (m *Mutex) RunAtomic(task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task()
}
