package app

import (
	"context"
	"sync"

	"quiz-session-engine/internal/domain"
)

// loop serialises every mutation of engine state onto one goroutine. Explicit calls and
// timer firings are both closures on the same queue, so they never interleave.
type loop struct {
	queue     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newLoop(size int) *loop {
	l := &loop{
		queue:   make(chan func(), size),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *loop) run() {
	defer close(l.stopped)
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.done:
			return
		}
	}
}

// post enqueues fn. It reports false once the loop is closed.
func (l *loop) post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *loop) close() {
	l.closeOnce.Do(func() { close(l.done) })
	<-l.stopped
}

// call runs fn on the loop and waits for its result. The context only bounds the wait
// for a queue slot; once accepted, fn always runs to completion.
func call[T any](ctx context.Context, l *loop, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	var zero T
	resc := make(chan result, 1)
	task := func() {
		v, err := fn()
		resc <- result{val: v, err: err}
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-l.done:
		return zero, domain.ErrEngineClosed
	case l.queue <- task:
	}

	select {
	case res := <-resc:
		return res.val, res.err
	case <-l.stopped:
		// Closed before the task was drained.
		select {
		case res := <-resc:
			return res.val, res.err
		default:
			return zero, domain.ErrEngineClosed
		}
	}
}
