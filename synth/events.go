package synth

import "fmt"

// EventKind tags the variant held by a NoteEvent.
type EventKind uint8

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventPolyPressure
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "NoteOn"
	case EventNoteOff:
		return "NoteOff"
	case EventPolyPressure:
		return "PolyPressure"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// NoteEvent is a timed note message. Value carries the velocity of a NoteOn
// or the pressure of a PolyPressure and is unused for NoteOff. Timing is the
// sample offset from the start of the block the event belongs to.
//
// NoteEvent is a plain value so events can be queued and passed through the
// scheduler without allocating.
type NoteEvent struct {
	Kind   EventKind
	Note   uint8
	Value  float32
	Timing int
}

// NoteOn builds a note-on event. velocity is expected in [0,1].
func NoteOn(timing int, note uint8, velocity float32) NoteEvent {
	return NoteEvent{Kind: EventNoteOn, Note: note, Value: velocity, Timing: timing}
}

// NoteOff builds a note-off event.
func NoteOff(timing int, note uint8) NoteEvent {
	return NoteEvent{Kind: EventNoteOff, Note: note, Timing: timing}
}

// PolyPressure builds a polyphonic aftertouch event. pressure is expected in
// [0,1].
func PolyPressure(timing int, note uint8, pressure float32) NoteEvent {
	return NoteEvent{Kind: EventPolyPressure, Note: note, Value: pressure, Timing: timing}
}

func (e NoteEvent) String() string {
	switch e.Kind {
	case EventNoteOff:
		return fmt.Sprintf("NoteOff{note:%d, timing:%d}", e.Note, e.Timing)
	case EventPolyPressure:
		return fmt.Sprintf("PolyPressure{note:%d, pressure:%.3f, timing:%d}", e.Note, e.Value, e.Timing)
	default:
		return fmt.Sprintf("NoteOn{note:%d, velocity:%.3f, timing:%d}", e.Note, e.Value, e.Timing)
	}
}

// EventSource yields the events of one block in non-decreasing Timing
// order. The second return value is false once the stream is exhausted.
type EventSource interface {
	NextEvent() (NoteEvent, bool)
}

// EventList is a slice-backed EventSource. It is reused across blocks: Clear
// and Push keep the backing array, so a list created with enough capacity
// never allocates while a host feeds it.
type EventList struct {
	events []NoteEvent
	pos    int
}

// NewEventList creates an empty list with room for capacity events.
func NewEventList(capacity int) *EventList {
	if capacity < 0 {
		capacity = 0
	}
	return &EventList{events: make([]NoteEvent, 0, capacity)}
}

// Reset replaces the contents with events and rewinds the read position.
// The slice is used as is, not copied.
func (l *EventList) Reset(events []NoteEvent) {
	l.events = events
	l.pos = 0
}

// Clear empties the list, keeping its capacity.
func (l *EventList) Clear() {
	l.events = l.events[:0]
	l.pos = 0
}

// Push appends an event.
func (l *EventList) Push(ev NoteEvent) {
	l.events = append(l.events, ev)
}

// Len returns the number of events not yet read.
func (l *EventList) Len() int {
	return len(l.events) - l.pos
}

// NextEvent implements EventSource.
func (l *EventList) NextEvent() (NoteEvent, bool) {
	if l.pos >= len(l.events) {
		return NoteEvent{}, false
	}
	ev := l.events[l.pos]
	l.pos++
	return ev, true
}
