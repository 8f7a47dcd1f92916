package taskloop

import "fmt"

// Bound holds a value that may only be read or written from tasks running
// on the owning loop. Access requires the loop's *Context, which only tasks
// receive, so cross-goroutine misuse fails at the call site instead of
// racing silently.
type Bound[T any] struct {
	loop *Loop
	v    T
}

// NewBound binds v to the loop that issued tc.
func NewBound[T any](tc *Context, v T) *Bound[T] {
	if tc == nil || tc.loop == nil {
		panic("taskloop: NewBound requires a loop context")
	}
	return &Bound[T]{loop: tc.loop, v: v}
}

// Get returns the bound value.
func (b *Bound[T]) Get(tc *Context) T {
	b.check(tc)
	return b.v
}

// Set replaces the bound value.
func (b *Bound[T]) Set(tc *Context, v T) {
	b.check(tc)
	b.v = v
}

// Take returns the bound value and resets it to the zero value.
func (b *Bound[T]) Take(tc *Context) T {
	b.check(tc)
	v := b.v
	var zero T
	b.v = zero
	return v
}

func (b *Bound[T]) check(tc *Context) {
	if tc == nil || tc.loop != b.loop {
		panic(fmt.Sprintf("taskloop: value bound to loop %q accessed from another context", b.loop.name))
	}
}
