package synth

// DefaultDeferredCapacity is the number of events a Scheduler can carry from
// one block into the next.
const DefaultDeferredCapacity = 256

// StepKind tags a scheduler Step.
type StepKind uint8

const (
	// StepEvent asks the caller to apply Step.Event before rendering on.
	StepEvent StepKind = iota
	// StepRender asks the caller to render samples [Start, End).
	StepRender
)

func (k StepKind) String() string {
	if k == StepRender {
		return "render"
	}
	return "event"
}

// Step is one unit of work within a block.
type Step struct {
	Kind  StepKind
	Event NoteEvent
	Start int
	End   int
}

type origin uint8

const (
	fromNone origin = iota
	fromDeferred
	fromSource
)

// Scheduler splits a block into render ranges at event boundaries so every
// event takes effect at its exact sample offset.
//
// For a block of length L and events at offsets t1 <= t2 <= ... the steps
// are: render [0,t1), apply event 1, render [t1,t2), apply event 2, ...,
// render [tn,L). Empty ranges are never emitted and events sharing an
// offset are applied back to back. Events at or past L are carried into the
// next block with their offset reduced by L and ahead of that block's own
// events at the same offset. A block of length 0 defers everything.
//
// The scheduler keeps one event of lookahead and never recurses; the
// deferred queue is allocated once.
type Scheduler struct {
	length int
	cursor int
	open   bool

	src      EventSource
	ahead    NoteEvent
	hasAhead bool
	srcDone  bool

	pending     []NoteEvent
	pendingHead int
	next        []NoteEvent
	dropped     int
}

// NewScheduler creates a scheduler that can defer up to capacity events.
func NewScheduler(capacity int) *Scheduler {
	if capacity < 0 {
		capacity = 0
	}
	return &Scheduler{
		pending: make([]NoteEvent, 0, capacity),
		next:    make([]NoteEvent, 0, capacity),
	}
}

// Begin starts a new block of length samples drawing events from src, which
// may be nil. A block left unfinished by the caller is finished first.
func (s *Scheduler) Begin(length int, src EventSource) {
	if s.open {
		s.finish()
	}
	if length < 0 {
		length = 0
	}
	s.length = length
	s.cursor = 0
	s.open = true
	s.src = src
	s.hasAhead = false
	s.srcDone = src == nil
}

// Next returns the next step of the current block, or false once the block
// is done.
func (s *Scheduler) Next() (Step, bool) {
	if !s.open {
		return Step{}, false
	}
	if s.cursor >= s.length {
		s.finish()
		return Step{}, false
	}
	ev, from := s.peek()
	if from != fromNone && ev.Timing <= s.cursor {
		s.pop(from)
		return Step{Kind: StepEvent, Event: ev, Start: s.cursor, End: s.cursor}, true
	}
	end := s.length
	if from != fromNone && ev.Timing < end {
		end = ev.Timing
	}
	step := Step{Kind: StepRender, Start: s.cursor, End: end}
	s.cursor = end
	return step, true
}

// Deferred returns the number of events waiting for the next block.
func (s *Scheduler) Deferred() int {
	return len(s.pending) - s.pendingHead
}

// Dropped returns how many events were discarded because the deferred queue
// was full.
func (s *Scheduler) Dropped() int { return s.dropped }

// Reset discards the current block and all deferred events.
func (s *Scheduler) Reset() {
	s.length, s.cursor, s.open = 0, 0, false
	s.src, s.hasAhead, s.srcDone = nil, false, true
	s.pending = s.pending[:0]
	s.pendingHead = 0
	s.next = s.next[:0]
	s.dropped = 0
}

// peek returns the earliest event not yet consumed. Deferred events win ties
// because they were scheduled by an earlier block.
func (s *Scheduler) peek() (NoteEvent, origin) {
	if !s.hasAhead && !s.srcDone {
		s.ahead, s.hasAhead = s.src.NextEvent()
		if !s.hasAhead {
			s.srcDone = true
		}
	}
	if s.pendingHead < len(s.pending) {
		d := s.pending[s.pendingHead]
		if !s.hasAhead || d.Timing <= s.ahead.Timing {
			return d, fromDeferred
		}
	}
	if s.hasAhead {
		return s.ahead, fromSource
	}
	return NoteEvent{}, fromNone
}

func (s *Scheduler) pop(from origin) {
	switch from {
	case fromDeferred:
		s.pendingHead++
	case fromSource:
		s.hasAhead = false
	}
}

// finish moves every unconsumed event into the queue for the next block.
func (s *Scheduler) finish() {
	s.next = s.next[:0]
	for {
		ev, from := s.peek()
		if from == fromNone {
			break
		}
		s.pop(from)
		if len(s.next) == cap(s.next) {
			s.dropped++
			continue
		}
		ev.Timing -= s.length
		if ev.Timing < 0 {
			ev.Timing = 0
		}
		s.next = append(s.next, ev)
	}
	s.pending, s.next = s.next, s.pending[:0]
	s.pendingHead = 0
	s.open = false
	s.src = nil
}
