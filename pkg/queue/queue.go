package queue

// Queue is a multi-producer queue drained by a single consumer.
type Queue interface {
	// Enqueue adds an item to the end of the queue.
	// It returns ErrQueueFull instead of blocking when the queue is at capacity.
	Enqueue(item interface{}) error
	// ReadAllMessages removes and returns every pending item in arrival order.
	ReadAllMessages() ([]interface{}, error)
	// Size returns the number of pending items.
	Size() int
	// ClearQueue drops every pending item.
	ClearQueue()
}
