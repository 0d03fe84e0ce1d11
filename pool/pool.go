// Package pool provides a growable recycling allocator.
//
// A Pool owns every instance it ever constructs. Instances move between a
// borrowed and an available state; Get borrows, Return gives back. The pool
// never shrinks and never fails to satisfy Get.
package pool

import (
	"errors"
	"iter"
)

var (
	// ErrForeign is returned when Return is called with an instance the pool
	// did not construct.
	ErrForeign = errors.New("pool: instance not owned by this pool")

	// ErrNotBorrowed is returned when Return is called with an instance that
	// is already available (double return).
	ErrNotBorrowed = errors.New("pool: instance is not borrowed")
)

// slot tracks the borrow state of one owned instance.
type slot struct {
	borrowed bool
}

// Pool recycles *T instances. The zero value is not usable; call New.
//
// Pool is not safe for concurrent use.
type Pool[T any] struct {
	owned     []*T
	slots     map[*T]*slot
	available []*T
}

// New creates a pool pre-populated with prealloc zero-valued instances, all
// of them available.
func New[T any](prealloc int) *Pool[T] {
	if prealloc < 0 {
		prealloc = 0
	}
	p := &Pool[T]{
		owned:     make([]*T, 0, prealloc),
		slots:     make(map[*T]*slot, prealloc),
		available: make([]*T, 0, prealloc),
	}
	for i := 0; i < prealloc; i++ {
		v := p.construct()
		p.available = append(p.available, v)
	}
	return p
}

func (p *Pool[T]) construct() *T {
	v := new(T)
	p.owned = append(p.owned, v)
	p.slots[v] = &slot{}
	return v
}

// Get borrows an instance. The most recently returned instance is handed out
// first; when none is available a new zero-valued instance is constructed.
//
// Returned instances are not reset: a recycled instance keeps whatever state
// it had when it was returned. Callers must initialise it before use.
func (p *Pool[T]) Get() *T {
	var v *T
	if n := len(p.available); n > 0 {
		v = p.available[n-1]
		p.available[n-1] = nil
		p.available = p.available[:n-1]
	} else {
		v = p.construct()
	}
	p.slots[v].borrowed = true
	return v
}

// Return makes a borrowed instance available again. Its fields are left
// untouched. Returning a foreign or already-available instance leaves the
// pool unchanged and reports ErrForeign or ErrNotBorrowed (or panics when
// built with the pooldebug tag).
func (p *Pool[T]) Return(v *T) error {
	s, ok := p.slots[v]
	if !ok {
		return violation(ErrForeign)
	}
	if !s.borrowed {
		return violation(ErrNotBorrowed)
	}
	s.borrowed = false
	p.available = append(p.available, v)
	return nil
}

// Reset makes every owned instance available, whatever its borrow state.
func (p *Pool[T]) Reset() {
	clear(p.available)
	p.available = p.available[:0]
	for _, v := range p.owned {
		p.slots[v].borrowed = false
		p.available = append(p.available, v)
	}
}

// All yields every owned instance in construction order.
func (p *Pool[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, v := range p.owned {
			if !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of instances ever constructed (the high-water mark).
func (p *Pool[T]) Len() int {
	return len(p.owned)
}

// Available returns the number of instances ready to be borrowed.
func (p *Pool[T]) Available() int {
	return len(p.available)
}
