package oneshot

import (
	"context"
	"sync/atomic"
	"unsafe"
)

// Receiver is the receiving endpoint of a one-shot channel.
//
// TryRecv, RecvCtx and Poll may each be called any number of times and in
// any combination; only one may be outstanding at a time, since there is
// exactly one receiver. Recv is the exception: it consumes the Receiver,
// taking it by value in spirit, and panics if called again.
type Receiver[T any] struct {
	c *cell

	consumed atomic.Bool // set once Recv has returned, guards reuse
	closed   atomic.Bool // set once Close has run, makes Close idempotent

	pending *receiverWaker // outstanding waker from a previous Poll, if any
}

// TryRecv returns the value without blocking if one is available.
//
//   - (value, nil) if a value was waiting.
//   - (zero, ErrEmpty) if the sender is alive but hasn't sent yet.
//   - (zero, ErrDisconnected) if the channel is closed.
func (r *Receiver[T]) TryRecv() (T, error) {
	var zero T
	state := atomic.LoadPointer(&r.c.slot)
	switch state {
	case emptyPtr():
		return zero, ErrEmpty
	case closedPtr():
		return zero, ErrDisconnected
	default:
		// Only the receiver ever publishes a waiter, and only right
		// before it suspends; TryRecv never suspends, so the only other
		// variant this can be is a value the sender published.
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](state), nil
	}
}

// Recv blocks the calling goroutine until a value arrives or the Sender is
// dropped, and consumes the Receiver. It returns ErrDisconnected if the
// channel closes with no value, including if a previous receive on this
// handle already took the value.
func (r *Receiver[T]) Recv() (T, error) {
	if !r.consumed.CompareAndSwap(false, true) {
		panic("oneshot: Recv called more than once on the same Receiver")
	}

	var zero T
	state := atomic.LoadPointer(&r.c.slot)
	if state == closedPtr() {
		return zero, ErrDisconnected
	}
	if state != emptyPtr() {
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](state), nil
	}

	w := newParkWaker()
	wPtr := unsafe.Pointer(w)
	if !atomic.CompareAndSwapPointer(&r.c.slot, emptyPtr(), wPtr) {
		// The sender acted between our load and our attempt to register;
		// see what it left behind instead.
		state = atomic.LoadPointer(&r.c.slot)
		if state == closedPtr() {
			return zero, ErrDisconnected
		}
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](state), nil
	}

	// Registered. Wait for the sender to swap our waker out. Unlike an
	// OS thread park, a channel receive has no spurious wakeups, so a
	// single blocking receive followed by one re-load is enough; there is
	// no re-check loop to write.
	<-w.parked
	state = atomic.LoadPointer(&r.c.slot)
	if state == closedPtr() {
		return zero, ErrDisconnected
	}
	atomic.StorePointer(&r.c.slot, closedPtr())
	return unboxPayload[T](state), nil
}

// RecvCtx blocks until a value arrives, ctx is done, or the Sender is
// dropped, without consuming the Receiver. On success it leaves the slot
// Closed rather than resetting it: the Receiver observably becomes
// single-use from that point on, and a later call on the same Receiver
// sees ErrDisconnected. This mirrors a non-consuming receive that still
// can't un-ring the bell once a value has actually been taken.
//
//   - (value, nil) if a value arrived before ctx was done.
//   - (zero, ErrTimeout-wrapping-ctx.Err()) if ctx finished first; the
//     channel remains open and a later send is still delivered to a
//     later receive.
//   - (zero, ErrDisconnected) if the channel is closed.
func (r *Receiver[T]) RecvCtx(ctx context.Context) (T, error) {
	var zero T

	state := atomic.LoadPointer(&r.c.slot)
	if state == closedPtr() {
		return zero, ErrDisconnected
	}
	if state != emptyPtr() {
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](state), nil
	}
	if err := ctx.Err(); err != nil {
		// No time left at all; take one more look at the slot in case
		// the sender raced us to it, otherwise report the timeout
		// without ever registering a waker.
		state = atomic.LoadPointer(&r.c.slot)
		switch state {
		case emptyPtr():
			return zero, recvCtxErr(err)
		case closedPtr():
			return zero, ErrDisconnected
		default:
			atomic.StorePointer(&r.c.slot, closedPtr())
			return unboxPayload[T](state), nil
		}
	}

	w := newParkWaker()
	wPtr := unsafe.Pointer(w)
	if !atomic.CompareAndSwapPointer(&r.c.slot, emptyPtr(), wPtr) {
		state = atomic.LoadPointer(&r.c.slot)
		if state == closedPtr() {
			return zero, ErrDisconnected
		}
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](state), nil
	}

	select {
	case <-w.parked:
		state = atomic.LoadPointer(&r.c.slot)
		if state == closedPtr() {
			return zero, ErrDisconnected
		}
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](state), nil
	case <-ctx.Done():
		// Take back whatever is there. If it's still our own waker, the
		// swap-back restores Empty and the channel stays usable for a
		// later send; otherwise the sender got there first and we
		// restore Closed, the terminal state, in its place.
		old := atomic.SwapPointer(&r.c.slot, emptyPtr())
		switch old {
		case wPtr:
			return zero, recvCtxErr(ctx.Err())
		case closedPtr():
			atomic.StorePointer(&r.c.slot, closedPtr())
			return zero, ErrDisconnected
		default:
			atomic.StorePointer(&r.c.slot, closedPtr())
			return unboxPayload[T](old), nil
		}
	}
}

// Poll drives the Receiver as a cooperative awaitable instead of blocking
// the calling goroutine. Each call either returns a final result
// (ready == true) or registers wake to be called later and returns
// (ready == false); the caller is expected to call Poll again after wake
// fires. Poll may be called repeatedly from different contexts while
// pending: each call replaces whatever waker a previous call left behind,
// so a receiver moved between polling contexts is always woken by its
// latest one, never a stale one.
func (r *Receiver[T]) Poll(wake func()) (value T, err error, ready bool) {
	var zero T
	w := newPollWaker(wake)
	wPtr := unsafe.Pointer(w)

	var old unsafe.Pointer
	if r.pending == nil {
		// First registration: only take over an Empty slot. If the slot
		// is already something else, the sender (or a previous,
		// non-Poll receive) got there first and we must not clobber it.
		if atomic.CompareAndSwapPointer(&r.c.slot, emptyPtr(), wPtr) {
			r.pending = w
			return zero, nil, false
		}
		old = atomic.LoadPointer(&r.c.slot)
	} else {
		// A waker from an earlier, not-yet-serviced Poll call is still
		// (or was, a moment ago) in the slot. Unconditionally replace it:
		// if the sender hasn't touched the slot since, this simply swaps
		// in a fresher waker derived from the current context; if the
		// sender already swapped in a value or Closed, we pick that up
		// below exactly as if we'd just registered for the first time.
		old = atomic.SwapPointer(&r.c.slot, wPtr)
		if old == unsafe.Pointer(r.pending) {
			r.pending = w
			return zero, nil, false
		}
	}

	r.pending = nil
	switch old {
	case closedPtr():
		// We may have just overwritten Closed with our new waker above;
		// put the terminal state back.
		atomic.StorePointer(&r.c.slot, closedPtr())
		return zero, ErrDisconnected, true
	default:
		atomic.StorePointer(&r.c.slot, closedPtr())
		return unboxPayload[T](old), nil, true
	}
}

// Close retires the Receiver without waiting for a value, closing the
// channel from its side. It is safe to call more than once, and safe to
// call after Recv/RecvCtx/TryRecv/Poll already produced a terminal
// result; New also arms a finalizer that calls this for a Receiver a
// caller forgets to retire at all.
func (r *Receiver[T]) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.closeCell()
}

func (r *Receiver[T]) closeCell() {
	old := atomic.SwapPointer(&r.c.slot, closedPtr())
	switch old {
	case emptyPtr(), closedPtr():
		// Empty: sender hasn't sent yet; it will observe Closed itself.
		// Closed: sender already closed its own half; nothing to do.
	default:
		// A value the sender sent but nobody ever picked up, or the
		// waker a still-pending Poll left behind. Discarded either way.
	}
}

func (r *Receiver[T]) finalize() {
	if r.closed.CompareAndSwap(false, true) {
		r.closeCell()
	}
}
