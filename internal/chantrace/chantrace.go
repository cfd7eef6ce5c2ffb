// Package chantrace records one-shot channel lifecycle events through
// golang.org/x/net/trace, so a running oneshotbench process can be
// inspected live at /debug/requests instead of only through its own
// stdout log.
package chantrace

import (
	"fmt"

	"golang.org/x/net/trace"
)

// Event names a single channel lifecycle transition. Values are chosen to
// read well next to a trace.EventLog entry, not to match any internal
// state-slot variant name.
type Event string

const (
	EventArmed     Event = "armed"     // New returned a fresh pair
	EventSent      Event = "sent"      // Send delivered a value
	EventDelivered Event = "delivered" // Recv/RecvCtx/TryRecv/Poll observed a value
	EventClosed    Event = "closed"    // either endpoint closed with no value
	EventTimedOut  Event = "timed_out" // RecvCtx gave up waiting
)

// Recorder logs channel lifecycle events for one run under a single
// trace.EventLog family, keyed by run ID so concurrent oneshotbench
// invocations against the same /debug/requests endpoint stay
// distinguishable.
type Recorder struct {
	ev trace.EventLog
}

// NewRecorder creates a Recorder whose events appear under the family
// "oneshot" with the given run ID as the title.
func NewRecorder(runID string) *Recorder {
	return &Recorder{ev: trace.NewEventLog("oneshot", runID)}
}

// Record appends one lifecycle event, optionally annotated (e.g. with a
// sequence number or a channel index).
func (r *Recorder) Record(e Event, detail string) {
	if detail == "" {
		r.ev.Printf("%s", e)
		return
	}
	r.ev.Printf("%s: %s", e, detail)
}

// Errorf records an event as an error-level trace entry, surfaced in red
// in the /debug/requests UI.
func (r *Recorder) Errorf(e Event, format string, args ...any) {
	r.ev.Errorf("%s: %s", e, fmt.Sprintf(format, args...))
}

// Finish closes out the underlying event log. Call it once the run it
// covers has completed.
func (r *Recorder) Finish() {
	r.ev.Finish()
}
