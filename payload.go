package oneshot

import "unsafe"

// payload is the heap container for the single value carried over a
// channel. It is boxed by the sender and unboxed by whichever endpoint
// performs the state transition that observes it.
type payload[T any] struct {
	value T
}

func boxPayload[T any](v T) unsafe.Pointer {
	return unsafe.Pointer(&payload[T]{value: v})
}

func unboxPayload[T any](p unsafe.Pointer) T {
	return (*payload[T])(p).value
}
