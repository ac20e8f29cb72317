package browserenv

import (
	"slices"
	"sync"
)

// Listeners is an ordered registry of callbacks with removal. The zero value
// is ready to use. Event sources embed it to implement EventSource.
type Listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
	ids  []int
}

// Add registers fn and returns a function removing it. Removing twice is a
// no-op.
func (l *Listeners[T]) Add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.ids = append(l.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
			if i := slices.Index(l.ids, id); i >= 0 {
				l.ids = slices.Delete(l.ids, i, i+1)
			}
		})
	}
}

// Len reports the number of registered callbacks.
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// Emit calls every callback in registration order, outside the lock, and
// returns how many were called.
func (l *Listeners[T]) Emit(v T) int {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.ids))
	for _, id := range l.ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
	return len(fns)
}
