package pushbridge

import (
	"errors"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Consumer receives the events flushed by an EventBroker.
type Consumer interface {
	// OnEvent delivers one event. Returning an error means the event did not
	// reach the other side; the broker keeps it and detaches the consumer.
	OnEvent(event Event) error
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(event Event) error

// OnEvent calls f(event).
func (f ConsumerFunc) OnEvent(event Event) error {
	return f(event)
}

// EventBroker buffers push events until a consumer is registered and the
// ready gate is open, then delivers them in dispatch order, each at most once.
//
// The queue, the consumer and the gate change together under one lock.
// Delivery happens outside the lock but only one goroutine delivers at a
// time, so a dispatch that races with a flush (or that comes from inside the
// consumer) is delivered by whoever is already draining, behind every event
// queued before it.
type EventBroker struct {
	mu            *Mutex
	queue         *Queue
	consumer      Consumer
	generation    uint64
	canEmitEvents bool
	draining      bool
	observing     bool

	ready     ReadySignal
	scheduler Scheduler
	logger    LoggerAdapter
	metrics   MetricsAdapter
}

var _ ReadyObserver = (*EventBroker)(nil)

// NewEventBroker creates a broker with an empty queue and no consumer.
func NewEventBroker(config BrokerConfig) (*EventBroker, error) {
	if config.ReadySignal == nil {
		return nil, errors.New("ReadySignal is required")
	}
	if config.Scheduler == nil {
		return nil, errors.New("Scheduler is required")
	}
	if config.LoggerAdapter == nil {
		config.LoggerAdapter = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	if config.MetricsAdapter == nil {
		config.MetricsAdapter = adapters.NewNoOpMetricsAdapter()
	}

	return &EventBroker{
		mu:        NewMutex(),
		queue:     NewQueue(),
		ready:     config.ReadySignal,
		scheduler: config.Scheduler,
		logger:    config.LoggerAdapter,
		metrics:   config.MetricsAdapter,
	}, nil
}

// Dispatch builds an event from name and payload and hands it to the
// consumer, or queues it when nobody can receive it yet. Unknown names and
// payloads that cannot cross the bridge are rejected and nothing is queued.
func (b *EventBroker) Dispatch(name EventName, payload any) error {
	if !name.Valid() {
		b.logger.Error("Rejected event '%s': unknown event name.", name)
		b.metrics.EventRejected(name, "unknown_name")
		return ErrUnknownEvent
	}

	p, err := adapters.NewPayload(payload)
	if err != nil {
		b.logger.Error("Rejected event '%s': %v", name, err)
		b.metrics.EventRejected(name, "unsupported_payload")
		return err
	}

	return b.DispatchEvent(adapters.NewEvent(name, p))
}

// DispatchEvent queues an already built event and drains the queue if the
// gate is open.
func (b *EventBroker) DispatchEvent(event Event) error {
	if !event.Name.Valid() {
		b.logger.Error("Rejected event '%s': unknown event name.", event.Name)
		b.metrics.EventRejected(event.Name, "unknown_name")
		return ErrUnknownEvent
	}

	var depth int
	b.mu.RunAtomic(func() {
		b.queue.Enqueue(event)
		depth = b.queue.Len()
	})
	b.metrics.EventDispatched(event.Name)
	b.metrics.QueueDepth(depth)

	b.drain()
	return nil
}

// Setup registers consumer, replacing any previous one, and recomputes the
// gate from preferences. With hold_events_until_ready set and the SDK not
// ready yet, events keep queuing until OnReady; otherwise queued events are
// flushed right away. The queue is never cleared.
func (b *EventBroker) Setup(preferences PreferencesAdapter, consumer Consumer) error {
	if consumer == nil {
		return ErrNilConsumer
	}

	holdEventsUntilReady := false
	if preferences != nil {
		holdEventsUntilReady = preferences.GetBool(HoldEventsUntilReadyPreference, false)
	}

	canEmitEvents := !holdEventsUntilReady || b.ready.IsReady()
	subscribe := false
	b.mu.RunAtomic(func() {
		b.consumer = consumer
		b.generation++
		b.canEmitEvents = canEmitEvents
		if !canEmitEvents && !b.observing {
			b.observing = true
			subscribe = true
		}
	})

	if !canEmitEvents {
		b.logger.Debug("Holding events until the push SDK is ready.")
		if subscribe {
			b.ready.AddObserver(b)
			// The SDK may have become ready between the check and the
			// subscription.
			if b.ready.IsReady() {
				b.OnReady()
			}
		}
		return nil
	}

	b.Flush()
	return nil
}

// OnReady opens the gate and flushes the queue. The broker stops observing
// the ready signal on the next scheduler tick because the signal may still
// be iterating over its observers.
func (b *EventBroker) OnReady() {
	wasObserving := false
	b.mu.RunAtomic(func() {
		wasObserving = b.observing
		b.observing = false
		b.canEmitEvents = true
	})

	if wasObserving {
		b.scheduler.Post(func() {
			b.ready.RemoveObserver(b)
		})
	}

	b.Flush()
}

// Flush delivers every queued event to the consumer in FIFO order. Without a
// consumer it only logs. Flushing an empty queue does nothing.
func (b *EventBroker) Flush() {
	hasConsumer := false
	size := 0
	b.mu.RunAtomic(func() {
		hasConsumer = b.consumer != nil
		size = b.queue.Len()
	})

	if !hasConsumer {
		b.logger.Debug("Cannot process event queue without a consumer.")
		return
	}
	if size == 0 {
		return
	}

	b.logger.Debug("Processing event queue with %d items.", size)
	b.drain()
}

// drain delivers queued events while the gate is open and a consumer is
// registered. Only one goroutine drains at a time; the others just leave
// their events in the queue for it.
func (b *EventBroker) drain() {
	owner := false
	b.mu.RunAtomic(func() {
		if !b.draining {
			b.draining = true
			owner = true
		}
	})
	if !owner {
		return
	}

	for {
		var (
			event      Event
			consumer   Consumer
			generation uint64
			ok         bool
		)
		b.mu.RunAtomic(func() {
			if !b.canEmitEvents || b.consumer == nil {
				b.draining = false
				return
			}
			event, ok = b.queue.Dequeue()
			if !ok {
				b.draining = false
				return
			}
			consumer = b.consumer
			generation = b.generation
		})
		if !ok {
			return
		}

		if err := consumer.OnEvent(event); err != nil {
			b.fail(generation, event, err)
			return
		}
		b.metrics.EventDelivered(event.Name)
	}
}

// fail puts event back at the head of the queue and detaches the consumer
// that failed unless it has already been replaced.
func (b *EventBroker) fail(generation uint64, event Event, err error) {
	var depth int
	b.mu.RunAtomic(func() {
		b.queue.Requeue(event)
		if b.generation == generation {
			b.consumer = nil
		}
		b.draining = false
		depth = b.queue.Len()
	})
	b.metrics.QueueDepth(depth)
	b.logger.Warn("Failed to deliver event '%s', keeping %d events until a consumer is registered: %v", event.Name, depth, err)

	// A new consumer may have been registered while this one was failing.
	b.drain()
}

// Len returns the number of events waiting in the queue.
func (b *EventBroker) Len() int {
	var n int
	b.mu.RunAtomic(func() {
		n = b.queue.Len()
	})
	return n
}

// CanEmitEvents reports whether the ready gate is open.
func (b *EventBroker) CanEmitEvents() bool {
	var open bool
	b.mu.RunAtomic(func() {
		open = b.canEmitEvents
	})
	return open
}

// HasConsumer reports whether a consumer is registered.
func (b *EventBroker) HasConsumer() bool {
	var registered bool
	b.mu.RunAtomic(func() {
		registered = b.consumer != nil
	})
	return registered
}
