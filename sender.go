package oneshot

import "sync/atomic"

// Sender is the sending endpoint of a one-shot channel. A Sender must be
// retired by exactly one of Send or Close; calling either a second time
// panics, the runtime-checked substitute for the move semantics that would
// otherwise consume the sender on first use.
type Sender[T any] struct {
	c    *cell
	used atomic.Bool
}

// Send delivers value to the Receiver and retires the Sender. Send never
// blocks: it is a single atomic swap on the shared state word followed by,
// at most, waking an already-suspended receiver.
//
// It returns a *SendError[T] carrying value back if the Receiver was
// already dropped; the value is otherwise considered delivered, whether
// or not anyone ever calls Recv to pick it up.
func (s *Sender[T]) Send(value T) error {
	if !s.used.CompareAndSwap(false, true) {
		panic("oneshot: Send called more than once, or after Close, on the same Sender")
	}

	p := boxPayload[T](value)
	old := atomic.SwapPointer(&s.c.slot, p)

	switch old {
	case emptyPtr():
		// Receiver hasn't tried to receive yet. It will pick up the
		// payload itself; nothing further for us to do.
		return nil
	case closedPtr():
		// Receiver is already gone. It will never look at the slot
		// again, so we're free to hand the value straight back to the
		// caller without touching the slot further.
		return &SendError[T]{value: unboxPayload[T](p)}
	default:
		// Receiver is suspended, waiting on the waker it left in the
		// slot. We own that waker now; wake it and let it go.
		w := (*receiverWaker)(old)
		w.unpark()
		return nil
	}
}

// Close retires the Sender without sending a value, closing the channel.
// It is the explicit counterpart to dropping a sender without having sent
// anything; New also arms a finalizer that calls this for a Sender a
// caller forgets to retire at all.
func (s *Sender[T]) Close() {
	if !s.used.CompareAndSwap(false, true) {
		panic("oneshot: Close called after Send, or more than once, on the same Sender")
	}
	s.closeCell()
}

func (s *Sender[T]) closeCell() {
	old := atomic.SwapPointer(&s.c.slot, closedPtr())
	switch old {
	case emptyPtr(), closedPtr():
		// Empty: receiver hasn't started waiting; it will observe
		// Closed on its own next access. Closed: the receiver already
		// closed its own half; nothing left to do on either count.
	default:
		w := (*receiverWaker)(old)
		w.unpark()
	}
}

func (s *Sender[T]) finalize() {
	if s.used.CompareAndSwap(false, true) {
		s.closeCell()
	}
}
