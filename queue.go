package pushbridge

import "container/list"

// Queue is a FIFO of events. It is not safe for concurrent use on its own;
// the EventBroker guards it together with the rest of its state.
type Queue struct {
	list *list.List
}

// NewQueue creates and returns a new empty Queue.
func NewQueue() *Queue {
	return &Queue{list: list.New()}
}

// Enqueue adds an Event to the end of the queue.
func (q *Queue) Enqueue(event Event) {
	q.list.PushBack(event)
}

// Dequeue removes and returns the front Event in the queue.
// It returns false if the queue is empty.
func (q *Queue) Dequeue() (Event, bool) {
	front := q.list.Front()
	if front == nil {
		return Event{}, false
	}
	q.list.Remove(front)
	return front.Value.(Event), true
}

// Requeue puts events back at the front of the queue, keeping their order
// ahead of anything already queued.
func (q *Queue) Requeue(events ...Event) {
	for i := len(events) - 1; i >= 0; i-- {
		q.list.PushFront(events[i])
	}
}

// Len returns the number of Events currently in the queue.
func (q *Queue) Len() int {
	return q.list.Len()
}
