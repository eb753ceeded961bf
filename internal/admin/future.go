package admin

import (
	"context"
	"fmt"
	"sync"
)

// Future is a resolve-once completion handle for one node's alter request.
type Future struct {
	NodeID string

	once sync.Once
	done chan struct{}
	err  error
}

// NewFuture returns an unresolved handle for nodeID.
func NewFuture(nodeID string) *Future {
	return &Future{
		NodeID: nodeID,
		done:   make(chan struct{}),
	}
}

// ResolvedFuture returns a handle that is already complete with err.
func ResolvedFuture(nodeID string, err error) *Future {
	f := NewFuture(nodeID)
	f.Resolve(err)
	return f
}

// Resolve completes the handle. Only the first call has an effect.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the handle resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the handle resolves or ctx ends. A context error is
// wrapped so callers can tell a timeout from a broker-side failure.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return &WaitError{NodeID: f.NodeID, Err: ctx.Err()}
	}
}

// WaitError is returned by Wait when the caller stopped waiting.
type WaitError struct {
	NodeID string
	Err    error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("gave up waiting for broker %s: %v", e.NodeID, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}
