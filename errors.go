package oneshot

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned by TryRecv when the sender is still alive but has
// not yet sent a value. It is transient: a later call may succeed.
var ErrEmpty = errors.New("oneshot: receiving on an empty channel")

// ErrDisconnected is returned when the channel is closed with no value
// available: the sender was dropped before sending, or a value already
// taken by a previous receive on the same handle. It is terminal.
var ErrDisconnected = errors.New("oneshot: receiving on a closed channel")

// ErrTimeout is returned by RecvCtx when the context is done before a
// value arrives. The channel is left open; a later send still completes
// and can be observed by a subsequent receive.
var ErrTimeout = errors.New("oneshot: timed out waiting for a value")

// SendError is returned by Sender.Send when the receiver was already gone
// at the time of the send. The value that could not be delivered is
// recoverable from the error with Value.
type SendError[T any] struct {
	value T
}

func (e *SendError[T]) Error() string {
	return "oneshot: send on a channel whose receiver has been dropped"
}

// Value returns the value that failed to be sent.
func (e *SendError[T]) Value() T {
	return e.value
}

// recvCtxErr translates a context.Context's cancellation into the
// RecvCtx error taxonomy. Both a deadline expiring and an explicit
// cancellation are reported as ErrTimeout: there is no separate
// "cancelled" case, since either way the receiver gave up waiting while
// the channel itself stays open.
func recvCtxErr(ctxErr error) error {
	return fmt.Errorf("%w: %w", ErrTimeout, ctxErr)
}
