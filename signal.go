package mixloop

import "fmt"

// Sampler is the contract every node in the graph implements.
type Sampler[T any] interface {
	Sample(ctx *Ctx) T
}

type SamplerFunc[T any] func(ctx *Ctx) T

func (f SamplerFunc[T]) Sample(ctx *Ctx) T { return f(ctx) }

// Signal is a handle to a node producing one T per tick.
//
// Copies of a Signal refer to the same node, so a sub-graph can be wired
// into several consumers without duplicating its state. The zero Signal
// yields the zero T on every tick.
type Signal[T any] struct {
	node Sampler[T]
}

func (s Signal[T]) Sample(ctx *Ctx) T {
	if s.node == nil {
		var zero T
		return zero
	}
	return s.node.Sample(ctx)
}

// IsZero reports whether the signal is unset.
func (s Signal[T]) IsZero() bool {
	return s.node == nil
}

func (s Signal[T]) String() string {
	if s.node == nil {
		return "Signal(nil)"
	}
	return fmt.Sprintf("Signal(%T)", s.node)
}

// cachedNode memoizes the value of its inner node for one sample index.
type cachedNode[T any] struct {
	inner Sampler[T]
	index uint64
	valid bool
	value T
}

func (c *cachedNode[T]) Sample(ctx *Ctx) T {
	if c.valid && c.index == ctx.SampleIndex {
		return c.value
	}
	c.value = c.inner.Sample(ctx)
	c.index = ctx.SampleIndex
	c.valid = true
	return c.value
}

// Cached wraps s so that its node is evaluated at most once per tick.
// Wrapping an already cached signal returns it unchanged.
func Cached[T any](s Signal[T]) Signal[T] {
	switch s.node.(type) {
	case nil, *cachedNode[T], constNode[T]:
		return s
	}
	return Signal[T]{node: &cachedNode[T]{inner: s.node}}
}

// Stateful wraps a node holding private state. The node advances exactly
// once per tick no matter how many consumers sample it.
func Stateful[T any](node Sampler[T]) Signal[T] {
	return Cached(Signal[T]{node: node})
}

// FromFn builds a node from a closure which may capture mutable state.
// The closure runs at most once per tick.
func FromFn[T any](f func(ctx *Ctx) T) Signal[T] {
	return Stateful[T](SamplerFunc[T](f))
}

// FromPureFn builds an uncached node. f must not depend on being called
// exactly once per tick; arithmetic combinators use this.
func FromPureFn[T any](f func(ctx *Ctx) T) Signal[T] {
	return Signal[T]{node: SamplerFunc[T](f)}
}

type constNode[T any] struct {
	value T
}

func (c constNode[T]) Sample(*Ctx) T { return c.value }

func Const[T any](value T) Signal[T] {
	return Signal[T]{node: constNode[T]{value: value}}
}

// constValue reports the value of s if it is a constant node.
func constValue[T any](s Signal[T]) (T, bool) {
	if c, ok := s.node.(constNode[T]); ok {
		return c.value, true
	}
	var zero T
	return zero, false
}

// Map applies f pointwise. The result is uncached: f is a pure function
// of its input and the input is sampled on every call.
func Map[T, U any](s Signal[T], f func(T) U) Signal[U] {
	return FromPureFn(func(ctx *Ctx) U {
		return f(s.Sample(ctx))
	})
}

// Zip combines two signals pointwise.
func Zip[T, U, V any](a Signal[T], b Signal[U], f func(T, U) V) Signal[V] {
	return FromPureFn(func(ctx *Ctx) V {
		return f(a.Sample(ctx), b.Sample(ctx))
	})
}

// Sf64 is a float signal: audio, control values, frequencies.
type Sf64 struct {
	Signal[float64]
}

func AsSf64(s Signal[float64]) Sf64 { return Sf64{s} }

// F64 returns a constant float signal.
func F64(v float64) Sf64 { return Sf64{Const(v)} }

// Su8 is a small integer signal, used for MIDI note indices.
type Su8 struct {
	Signal[uint8]
}

func AsSu8(s Signal[uint8]) Su8 { return Su8{s} }

// U8 returns a constant small integer signal.
func U8(v uint8) Su8 { return Su8{Const(v)} }

// Cached returns the per-tick cached view of s.
func (s Sf64) Cached() Sf64 { return Sf64{Cached(s.Signal)} }

func (s Su8) Cached() Su8 { return Su8{Cached(s.Signal)} }

func (s Su8) ToSf64() Sf64 {
	return Sf64{Map(s.Signal, func(v uint8) float64 { return float64(v) })}
}

// or returns s, or the constant def when s is unset.
func (s Sf64) or(def float64) Sf64 {
	if s.IsZero() {
		return F64(def)
	}
	return s
}
