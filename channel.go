package oneshot

import "runtime"

// New allocates a channel and returns its two endpoints. The only way it
// can fail is an allocator failure, which in Go surfaces as an
// out-of-memory crash rather than a returned error, so New is infallible
// from the caller's point of view.
func New[T any]() (*Sender[T], *Receiver[T]) {
	c := newCell()
	s := &Sender[T]{c: c}
	r := &Receiver[T]{c: c}

	// Safety net for callers who let an endpoint go out of scope without
	// calling Send/Close (Sender) or Close (Receiver): Go has no Drop, so
	// without this a forgotten endpoint would park its counterpart
	// forever instead of merely leaking memory. Well-behaved callers
	// still call Close explicitly; this only guards against the case
	// where they don't.
	runtime.SetFinalizer(s, (*Sender[T]).finalize)
	runtime.SetFinalizer(r, (*Receiver[T]).finalize)

	return s, r
}
