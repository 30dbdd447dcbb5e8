package selection

import (
	"context"
	"sync"
)

// Stream names one independently superseded request stream: a session's
// requests for one series kind.
type Stream struct {
	Session string
	Kind    string
}

// Ticket identifies one in-flight request on a stream.
type Ticket struct {
	Stream     Stream
	Generation uint64
	cancel     context.CancelFunc
}

// Tracker hands out increasing generations per stream. Beginning a new
// request cancels the previous in-flight request on the same stream, and only
// the latest ticket can commit. Streams of the same session do not interfere.
type Tracker struct {
	mu       sync.Mutex
	next     uint64
	inflight map[Stream]Ticket
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inflight: make(map[Stream]Ticket)}
}

// Begin starts a request of kind for session. The returned context is
// canceled when a newer request on the same stream begins or when the ticket
// is finished.
func (t *Tracker) Begin(ctx context.Context, session, kind string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	stream := Stream{Session: session, Kind: kind}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.inflight[stream]; ok {
		prev.cancel()
	}
	t.next++
	ticket := Ticket{Stream: stream, Generation: t.next, cancel: cancel}
	t.inflight[stream] = ticket
	return ctx, ticket
}

// Current reports whether ticket is still the latest on its stream.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.inflight[ticket.Stream]
	return ok && cur.Generation == ticket.Generation
}

// Finish releases ticket and reports whether its result may be committed,
// which is true only if no newer request began on its stream meanwhile.
func (t *Tracker) Finish(ticket Ticket) bool {
	if ticket.cancel != nil {
		ticket.cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.inflight[ticket.Stream]
	if !ok || cur.Generation != ticket.Generation {
		return false
	}
	delete(t.inflight, ticket.Stream)
	return true
}

// InFlight returns the number of streams with an unfinished request.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
