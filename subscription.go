package pushbridge

import (
	"sync"

	"github.com/google/uuid"
)

// EventCallback receives the payload of an event. data is nil for events
// without a payload.
type EventCallback func(data Payload)

// Subscription is an application callback registered for one event name.
type Subscription struct {
	id       string
	event    EventName
	callback EventCallback
	registry *subscriptionRegistry
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Event returns the event name the subscription listens to.
func (s *Subscription) Event() EventName {
	return s.event
}

// Remove stops delivering events to the subscription. Removing twice is a
// no-op.
func (s *Subscription) Remove() {
	s.registry.remove(s)
}

// subscriptionRegistry fans events out to subscriptions and keeps the events
// that arrived before anyone subscribed to their name.
//
// Callbacks run outside the lock, one at a time and in the order they were
// scheduled, so a callback may subscribe or unsubscribe without deadlocking.
// Whichever goroutine finds the outbox idle drains it; others only append and
// return, so their callbacks may run after they return.
type subscriptionRegistry struct {
	mu            sync.Mutex
	subscriptions []*Subscription
	eventsNotSent []EventMessage
	outbox        []func()
	delivering    bool
	logger        LoggerAdapter
}

func newSubscriptionRegistry(logger LoggerAdapter) *subscriptionRegistry {
	return &subscriptionRegistry{logger: logger}
}

// subscribe appends a subscription and replays the buffered events with the
// same name, in arrival order. The replayed events leave the buffer.
func (r *subscriptionRegistry) subscribe(event EventName, callback EventCallback) *Subscription {
	sub := &Subscription{
		id:       uuid.NewString(),
		event:    event,
		callback: callback,
		registry: r,
	}

	r.mu.Lock()
	r.subscriptions = append(r.subscriptions, sub)
	kept := make([]EventMessage, 0, len(r.eventsNotSent))
	for _, msg := range r.eventsNotSent {
		if msg.Name != event {
			kept = append(kept, msg)
			continue
		}
		data := msg.Data
		r.outbox = append(r.outbox, func() { callback(data) })
	}
	r.eventsNotSent = kept
	r.mu.Unlock()

	r.deliver()
	return sub
}

func (r *subscriptionRegistry) remove(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subscriptions {
		if s == sub {
			r.subscriptions = append(r.subscriptions[:i:i], r.subscriptions[i+1:]...)
			return
		}
	}
}

// receive hands msg to every subscription for its name, in creation order,
// or buffers it when there is none.
func (r *subscriptionRegistry) receive(msg EventMessage) {
	r.mu.Lock()
	matched := false
	for _, sub := range r.subscriptions {
		if sub.event != msg.Name {
			continue
		}
		matched = true
		callback, data := sub.callback, msg.Data
		r.outbox = append(r.outbox, func() { callback(data) })
	}
	if !matched {
		r.eventsNotSent = append(r.eventsNotSent, msg)
	}
	r.mu.Unlock()

	r.deliver()
}

func (r *subscriptionRegistry) deliver() {
	r.mu.Lock()
	if r.delivering {
		r.mu.Unlock()
		return
	}
	r.delivering = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		if len(r.outbox) == 0 {
			r.delivering = false
			r.mu.Unlock()
			return
		}
		next := r.outbox[0]
		r.outbox[0] = nil
		r.outbox = r.outbox[1:]
		r.mu.Unlock()

		r.invoke(next)
	}
}

func (r *subscriptionRegistry) invoke(callback func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Event callback panicked: %v", rec)
		}
	}()
	callback()
}

// pending returns the number of buffered events waiting for a subscriber.
func (r *subscriptionRegistry) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.eventsNotSent)
}

// count returns the number of live subscriptions.
func (r *subscriptionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscriptions)
}
