// Package iterutil adapts Go 1.23+ iterators with the lookahead the
// rewriter's context scan and the flatten codec's one-element lookahead
// both need, built as an explicit iterator/state machine over iter.Pull
// rather than a coroutine-style generator.
package iterutil

import "iter"

// Peekable wraps an iter.Seq[T] with arbitrary-depth lookahead (PeekAt),
// one-element Peek, Next, and Prepend. It is single-use and not safe for
// concurrent access, matching a single-consumer lazy-stream model.
type Peekable[T any] struct {
	next      func() (T, bool)
	stop      func()
	buf       []T
	exhausted bool
}

// NewPeekable starts pulling from seq. Callers must eventually call Stop,
// directly or by draining the sequence to exhaustion, to release the
// underlying pull goroutine.
func NewPeekable[T any](seq iter.Seq[T]) *Peekable[T] {
	next, stop := iter.Pull(seq)
	return &Peekable[T]{next: next, stop: stop}
}

// Stop releases the underlying pull-based iterator. Safe to call more than
// once.
func (p *Peekable[T]) Stop() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

func (p *Peekable[T]) fill(n int) {
	for len(p.buf) <= n && !p.exhausted {
		v, ok := p.next()
		if !ok {
			p.exhausted = true
			break
		}
		p.buf = append(p.buf, v)
	}
}

// PeekAt returns the value n positions ahead of the cursor (0 is the next
// value to be consumed) without consuming anything, mirroring the indexed
// lookahead the rewriter's context scan performs over ignored tokens.
func (p *Peekable[T]) PeekAt(n int) (T, bool) {
	p.fill(n)
	if n < len(p.buf) {
		return p.buf[n], true
	}
	var zero T
	return zero, false
}

// Peek returns the next value without consuming it.
func (p *Peekable[T]) Peek() (T, bool) {
	return p.PeekAt(0)
}

// Next consumes and returns the next value.
func (p *Peekable[T]) Next() (T, bool) {
	if len(p.buf) > 0 {
		v := p.buf[0]
		p.buf = p.buf[1:]
		return v, true
	}
	if p.exhausted {
		var zero T
		return zero, false
	}
	return p.next()
}

// Prepend pushes v back to the front of the stream; the next Peek/Next call
// will return it before anything else. Used to put back the unconsumed
// remainder of a tagstack after peeling off its outermost tag.
func (p *Peekable[T]) Prepend(v T) {
	p.buf = append([]T{v}, p.buf...)
}

// HasNext reports whether another value is available without consuming it.
func (p *Peekable[T]) HasNext() bool {
	_, ok := p.Peek()
	return ok
}
