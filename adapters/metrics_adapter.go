package adapters

// MetricsAdapter receives broker activity.
// Implement this interface to export bridge metrics to the host's backend.
type MetricsAdapter interface {
	// EventDispatched is called once per accepted dispatch.
	EventDispatched(name EventName)
	// EventRejected is called when a dispatch is refused as caller error.
	EventRejected(name EventName, reason string)
	// EventDelivered is called after the consumer accepted an event.
	EventDelivered(name EventName)
	// QueueDepth reports the number of events waiting for a consumer.
	QueueDepth(n int)
}
