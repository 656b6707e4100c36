// Package observe provides the change-notification primitive shared by the
// state containers. Listeners run synchronously on the publishing goroutine,
// in subscription order, after the container has released its own lock.
// Containers that mutate from several goroutines use Ordered so listeners
// observe changes in the order they were committed.
package observe

import "sync"

// Subject fans a value out to its subscribers.
type Subject[T any] struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers v to every current subscriber.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	fns := make([]func(T), len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len reports the number of subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Ordered is a Subject that delivers values in the order they were queued.
// A container calls Queue while it still holds the lock that made the
// change and Flush after releasing it. A Flush that finds a delivery in
// progress returns at once and the running one delivers its value,
// including values queued from inside a listener.
type Ordered[T any] struct {
	Subject[T]

	qmu      sync.Mutex
	pending  []T
	flushing bool
}

// Queue appends v to the delivery queue.
func (o *Ordered[T]) Queue(v T) {
	o.qmu.Lock()
	o.pending = append(o.pending, v)
	o.qmu.Unlock()
}

// Flush delivers queued values until the queue is empty.
func (o *Ordered[T]) Flush() {
	o.qmu.Lock()
	if o.flushing {
		o.qmu.Unlock()
		return
	}
	o.flushing = true
	o.qmu.Unlock()

	drained := false
	defer func() {
		// A panicking listener must not leave the queue claimed.
		if !drained {
			o.qmu.Lock()
			o.flushing = false
			o.qmu.Unlock()
		}
	}()

	for {
		v, ok := o.next()
		if !ok {
			drained = true
			return
		}
		o.Publish(v)
	}
}

// next pops the head of the queue. On an empty queue it releases the
// flush claim under the same lock, so a concurrent Queue is never stranded.
func (o *Ordered[T]) next() (T, bool) {
	o.qmu.Lock()
	defer o.qmu.Unlock()

	var zero T
	if len(o.pending) == 0 {
		o.flushing = false
		return zero, false
	}
	v := o.pending[0]
	o.pending[0] = zero
	o.pending = o.pending[1:]
	return v, true
}
