package mixloop

import (
	"sync"
)

// Box is a mutex-guarded cell shared between the engine and the goroutines
// feeding it live input.
type Box[T any] struct {
	mu sync.Mutex
	v  T
}

func (box *Box[T]) Get() T {
	box.mu.Lock()
	defer box.mu.Unlock()
	return box.v
}

func (box *Box[T]) Set(v T) {
	box.mu.Lock()
	defer box.mu.Unlock()
	box.v = v
}

// Update mutates the boxed value in place.
func (box *Box[T]) Update(f func(v *T)) {
	box.mu.Lock()
	defer box.mu.Unlock()
	f(&box.v)
}

// CopyTo copies the boxed value into dst without allocating.
func (box *Box[T]) CopyTo(dst *T) {
	box.mu.Lock()
	defer box.mu.Unlock()
	*dst = box.v
}

// snapshot exposes a Box to the graph. The live value is copied once per
// tick, so every node sampled within a tick observes the same state.
type snapshot[T any] struct {
	box   *Box[T]
	frame T
	index uint64
	valid bool
}

func (s *snapshot[T]) Sample(ctx *Ctx) *T {
	if !s.valid || s.index != ctx.SampleIndex {
		s.box.CopyTo(&s.frame)
		s.index = ctx.SampleIndex
		s.valid = true
	}
	return &s.frame
}
