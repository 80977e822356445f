package pushbridge

import (
	"sync"
	"sync/atomic"
)

// ReadyObserver is notified once the push SDK has finished launching.
type ReadyObserver interface {
	OnReady()
}

// ReadySignal is the push SDK's "ready" notification.
type ReadySignal interface {
	IsReady() bool
	AddObserver(observer ReadyObserver)
	RemoveObserver(observer ReadyObserver)
}

// ReadyNotifier is an in-process ReadySignal. Observers are called while the
// observer list is being iterated, so an observer must not remove itself
// from inside OnReady; it has to schedule the removal for later.
type ReadyNotifier struct {
	ready     atomic.Bool
	mu        sync.RWMutex
	observers []ReadyObserver
}

var _ ReadySignal = (*ReadyNotifier)(nil)

// NewReadyNotifier creates a notifier in the not-ready state.
func NewReadyNotifier() *ReadyNotifier {
	return &ReadyNotifier{}
}

// IsReady reports whether MarkReady has been called.
func (n *ReadyNotifier) IsReady() bool {
	return n.ready.Load()
}

// AddObserver registers observer. Adding the same observer twice is a no-op.
func (n *ReadyNotifier) AddObserver(observer ReadyObserver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, o := range n.observers {
		if o == observer {
			return
		}
	}
	n.observers = append(n.observers, observer)
}

// RemoveObserver unregisters observer.
func (n *ReadyNotifier) RemoveObserver(observer ReadyObserver) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, o := range n.observers {
		if o == observer {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// Observers returns the number of registered observers.
func (n *ReadyNotifier) Observers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// MarkReady flips the notifier to ready and notifies every observer. Only the
// first call notifies.
func (n *ReadyNotifier) MarkReady() {
	if !n.ready.CompareAndSwap(false, true) {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, o := range n.observers {
		o.OnReady()
	}
}
