// Package oneshot implements a one-shot, single-producer single-consumer
// channel: a primitive that carries at most one value of type T from
// exactly one Sender[T] to exactly one Receiver[T].
//
// The entire value of the package is the lock-free coordination protocol
// between the two endpoints. A single atomic, pointer-sized state word
// encodes the channel's complete state (empty, a value in transit, a
// waiter registered, or closed) and drives the rendezvous between the two
// sides under every possible interleaving, without a mutex or a condition
// variable anywhere in the picture.
//
// A Receiver can observe the channel four ways: non-blocking (TryRecv),
// blocking (Recv), blocking with a context.Context deadline (RecvCtx), or
// cooperatively via Poll for callers implementing their own scheduler.
// Mixing these on the same Receiver is legal; only one may be outstanding
// at a time, since there is exactly one receiver.
//
// oneshot does not support multiple producers or consumers, buffering
// more than one value, reusing a channel once a value has been taken, or
// broadcasting. Use the standard library's chan T, or a third-party
// pub/sub library, for those.
package oneshot
