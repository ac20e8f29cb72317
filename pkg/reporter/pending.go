package reporter

import "time"

// Pending is the outcome of a Dispatch, available once the delivery ends.
type Pending struct {
	done   chan struct{}
	result Result
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Done is closed when the delivery has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the delivery finishes.
func (p *Pending) Await() Result {
	<-p.done
	return p.result
}

// AwaitTimeout waits at most timeout. On timeout the result carries
// ErrTimeout; the delivery itself keeps running.
func (p *Pending) AwaitTimeout(timeout time.Duration) Result {
	select {
	case <-p.done:
		return p.result
	case <-time.After(timeout):
		return Result{Err: ErrTimeout}
	}
}

// IsComplete reports whether the delivery has finished, without blocking.
func (p *Pending) IsComplete() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
