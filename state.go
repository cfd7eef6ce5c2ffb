package oneshot

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// The state slot is always interpretable as one of four disjoint variants:
//
//	empty              - sentinelEmpty: neither side has acted yet
//	closed             - sentinelClosed: terminal, no further transitions
//	waiter registered  - a *receiverWaker the receiver published
//	value ready        - a *payload[T] the sender published
//
// sentinelEmpty and sentinelClosed are the addresses of two
// package-level byte variables. A zero-size variable wouldn't do here: the
// Go spec permits two distinct zero-size variables to share one address,
// which would collapse the two sentinels onto the same pointer. A byte
// each guarantees they occupy separate storage, so pointer identity alone
// discriminates the sentinel variants from the pointer variants without
// any tag bits.
var (
	sentinelEmpty  byte
	sentinelClosed byte
)

func emptyPtr() unsafe.Pointer  { return unsafe.Pointer(&sentinelEmpty) }
func closedPtr() unsafe.Pointer { return unsafe.Pointer(&sentinelClosed) }

// cell is the heap cell shared by a Sender and a Receiver. Both endpoints
// hold a pointer to the same cell; neither is ever cloned, so the cell's
// lifetime is bounded by whichever endpoint is collected last. Unlike a
// manually managed runtime, Go's GC reclaims the cell itself once both
// endpoints drop their reference — what this type still has to get right
// is the state machine, not deallocation bookkeeping.
type cell struct {
	slot unsafe.Pointer // atomic; one of the four variants above

	// Padding so a hot channel's state word doesn't share a cache line
	// with whatever the allocator places next to it. Send is a single
	// atomic swap on slot and each receive only a few atomic operations;
	// false sharing would turn those into contention with an unrelated
	// channel.
	_ cpu.CacheLinePad
}

func newCell() *cell {
	return &cell{slot: emptyPtr()}
}
