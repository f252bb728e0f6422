// Package midifile turns Standard MIDI Files into block-relative note events
// for the synth engine.
package midifile

import (
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-synth/synth"
)

// AllChannels disables channel filtering.
const AllChannels = 0

// Event is a note event placed at an absolute frame. The embedded Timing is
// rewritten relative to each block by Sequence.Fill.
type Event struct {
	Frame int64
	synth.NoteEvent
}

// Options control how a file is converted.
type Options struct {
	SampleRate float64
	// Channel selects one MIDI channel numbered 1-16, or AllChannels.
	Channel int
	// Transpose shifts every note by semitones; notes moved outside 0..127
	// are dropped.
	Transpose int
}

// Sequence is a time-ordered list of events with a read cursor.
type Sequence struct {
	events []Event
	pos    int
}

// Load reads a MIDI file from disk.
func Load(path string, opts Options) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open midi file")
	}
	defer f.Close()
	seq, err := Read(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "midi file %s", path)
	}
	return seq, nil
}

// Read decodes a Standard MIDI File. Note-on, note-off (including note-on
// with velocity 0) and polyphonic aftertouch are kept; everything else is
// skipped. Velocities and pressures are scaled to [0,1].
func Read(r io.Reader, opts Options) (*Sequence, error) {
	if !(opts.SampleRate > 0) {
		return nil, errors.Errorf("invalid sample rate %v", opts.SampleRate)
	}
	if opts.Channel < AllChannels || opts.Channel > 16 {
		return nil, errors.Errorf("invalid channel %d", opts.Channel)
	}

	var events []Event
	rd := smf.ReadTracksFrom(r).Do(func(te smf.TrackEvent) {
		msg := midi.Message(te.Message)
		var ch, key, val uint8
		var ev synth.NoteEvent
		switch {
		case msg.GetNoteStart(&ch, &key, &val):
			ev = synth.NoteEvent{Kind: synth.EventNoteOn, Value: float32(val) / 127}
		case msg.GetNoteEnd(&ch, &key):
			ev = synth.NoteEvent{Kind: synth.EventNoteOff}
		case msg.GetPolyAfterTouch(&ch, &key, &val):
			ev = synth.NoteEvent{Kind: synth.EventPolyPressure, Value: float32(val) / 127}
		default:
			return
		}
		if opts.Channel != AllChannels && int(ch)+1 != opts.Channel {
			return
		}
		note := int(key) + opts.Transpose
		if note < 0 || note > 127 {
			return
		}
		ev.Note = uint8(note)
		frame := int64(math.Round(float64(te.AbsMicroSeconds) * opts.SampleRate / 1e6))
		events = append(events, Event{Frame: frame, NoteEvent: ev})
	})
	if err := rd.Error(); err != nil {
		return nil, errors.Wrap(err, "read tracks")
	}
	return NewSequence(events), nil
}

// NewSequence sorts events by frame, keeping the file order of events that
// share a frame.
func NewSequence(events []Event) *Sequence {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })
	return &Sequence{events: events}
}

// Len returns the number of events.
func (s *Sequence) Len() int { return len(s.events) }

// Events returns the sorted events.
func (s *Sequence) Events() []Event { return s.events }

// EndFrame returns the frame of the last event, or 0 for an empty sequence.
func (s *Sequence) EndFrame() int64 {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Frame
}

// Done reports whether every event has been handed out.
func (s *Sequence) Done() bool { return s.pos >= len(s.events) }

// Rewind moves the cursor back to the first event.
func (s *Sequence) Rewind() { s.pos = 0 }

// Fill clears list and appends the events falling in the block
// [start, start+length) with Timing relative to start. Events the cursor
// already passed but that lie before start are delivered at offset 0. It
// returns the number of events added.
func (s *Sequence) Fill(list *synth.EventList, start int64, length int) int {
	list.Clear()
	end := start + int64(length)
	n := 0
	for s.pos < len(s.events) && s.events[s.pos].Frame < end {
		ev := s.events[s.pos]
		offset := ev.Frame - start
		if offset < 0 {
			offset = 0
		}
		ev.Timing = int(offset)
		list.Push(ev.NoteEvent)
		s.pos++
		n++
	}
	return n
}
