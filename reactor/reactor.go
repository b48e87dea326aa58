// Package reactor implements the single cooperative I/O dispatcher the
// STOMP client and the network monitor coordinator run on (§5, §9 "two
// strands"). It has no analogue in the teacher pack; it is a direct, minimal
// translation of the Boost.Asio io_context/strand pair the original
// implementation is built on, styled after the teacher's own use of
// channels and goroutines for decoupled, ordered completion delivery
// (client.Client.Start's ackCh/timeout pattern).
package reactor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const idlePoll = 2 * time.Millisecond

// Strand is a logical single-threaded executor bound to a Reactor. Two
// Strand values partition work: the transport strand carries transport
// I/O and frame parsing, the user strand carries user-visible callbacks.
// Callbacks posted to one Strand never run concurrently with each other.
type Strand struct {
	tasks chan func()
}

func newStrand(capacity int) *Strand {
	return &Strand{tasks: make(chan func(), capacity)}
}

// Post schedules fn to run on this strand. It returns immediately while the
// strand has room (New gives each strand room for 1024 queued tasks) and
// blocks until a slot frees otherwise; fn runs later, on whichever goroutine
// is driving the owning Reactor's Run loop.
func (s *Strand) Post(fn func()) {
	s.tasks <- fn
}

func (s *Strand) len() int {
	return len(s.tasks)
}

// Reactor is the I/O event dispatcher. A single call to Run services both
// strands; additional concurrent Run callers are an optimization (mirrors
// running Boost.Asio's io_context::run() from a thread pool) and must not
// change the observable order of callbacks for any one subscription, which
// holds here because each Strand's channel preserves FIFO order and Run
// callers take turns: only one of them dequeues and runs a task at a time.
type Reactor struct {
	TransportStrand *Strand
	UserStrand      *Strand

	pending int64 // outstanding async operations not yet posted back

	runMu sync.Mutex // held by a Run caller while it waits for and runs one task

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// New creates a Reactor with its two strands ready to accept work.
func New() *Reactor {
	return &Reactor{
		TransportStrand: newStrand(1024),
		UserStrand:      newStrand(1024),
		stopCh:          make(chan struct{}),
	}
}

// Enter registers one outstanding async operation (a connect, send, read or
// close in flight). Call Leave when its completion has been posted. This is
// how Run knows there is still work to wait for even when no task is
// currently queued on either strand.
func (r *Reactor) Enter() {
	atomic.AddInt64(&r.pending, 1)
}

// Leave reports that one previously-Entered async operation has completed.
func (r *Reactor) Leave() {
	atomic.AddInt64(&r.pending, -1)
}

// Run drives both strands until ctx is done, Stop is called, or no work
// remains outstanding and both strands are empty. It never returns an error
// of its own; domain-level failures are recorded by the coordinator, not
// the reactor.
func (r *Reactor) Run(ctx context.Context) error {
	for {
		done := false
		r.runMu.Lock()
		select {
		case <-ctx.Done():
			done = true
		case <-r.stopCh:
			done = true
		case fn := <-r.TransportStrand.tasks:
			fn()
		case fn := <-r.UserStrand.tasks:
			fn()
		case <-time.After(idlePoll):
			done = atomic.LoadInt64(&r.pending) == 0 &&
				r.TransportStrand.len() == 0 &&
				r.UserStrand.len() == 0
		}
		r.runMu.Unlock()
		if done {
			return nil
		}
	}
}

// RunFor drives the reactor for at most d before returning, as Run, but
// imposing a wall-clock deadline (§5 "Cancellation"). On expiry it returns
// as Run does after Stop, abandoning in-flight operations, but the reactor
// is not left stopped: a later Run or RunFor proceeds without Reset.
func (r *Reactor) RunFor(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Run(ctx)
}

// Stop cancels outstanding work. Any Run call in progress, on this or any
// other goroutine, returns shortly after. Tasks already queued on a strand
// are not run; they stay queued until the reactor is Reset and driven again.
// Tasks mid-flight when Stop is called may still be posted with whatever
// cause they were given.
func (r *Reactor) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.stopCh)
	}
}

// Reset clears a prior Stop so the reactor can be driven again. It does not
// clear tasks already queued.
func (r *Reactor) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		r.stopped = false
		r.stopCh = make(chan struct{})
	}
}
