// Package observer is a small typed listener registry.
package observer

import "sync"

// Subscription is returned by Subscribe and removes its listener.
type Subscription interface {
	Unsubscribe()
}

// Registry keeps listeners in registration order. It is safe for concurrent
// use. Notify calls listeners synchronously outside the registry lock, so a
// listener may subscribe or unsubscribe while being notified.
type Registry[T any] struct {
	mu        sync.Mutex
	next      uint64
	listeners []entry[T]
}

type entry[T any] struct {
	id uint64
	fn func(T)
}

type subscription[T any] struct {
	once sync.Once
	r    *Registry[T]
	id   uint64
}

func (s *subscription[T]) Unsubscribe() {
	s.once.Do(func() { s.r.remove(s.id) })
}

// Subscribe registers fn and returns a handle that removes it.
func (r *Registry[T]) Subscribe(fn func(T)) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.listeners = append(r.listeners, entry[T]{id: r.next, fn: fn})
	return &subscription[T]{r: r, id: r.next}
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.listeners {
		if e.id == id {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Notify calls every listener registered at the time of the call with v.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	snapshot := make([]entry[T], len(r.listeners))
	copy(snapshot, r.listeners)
	r.mu.Unlock()

	for _, e := range snapshot {
		e.fn(v)
	}
}

// Len reports the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
