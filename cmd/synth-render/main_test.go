package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/internal/audioio"
	"github.com/cwbudde/algo-synth/midifile"
	"github.com/cwbudde/algo-synth/synth"
)

func TestRenderFixedLength(t *testing.T) {
	e := synth.NewEngine(synth.DefaultConfig())
	seq := singleNote(69, 1, 4800)
	out := render(e, seq, nil, renderOptions{blockSize: 128, channels: 2, minFrames: 10000, maxFrames: 10000})
	if len(out) != 2 || len(out[0]) != 10000 || len(out[1]) != 10000 {
		t.Fatalf("unexpected output shape: %d channels, %d frames", len(out), len(out[0]))
	}
	if audioio.RMS(out[0][:4800]) == 0 {
		t.Fatalf("expected sound while the note is held")
	}
	if !seq.Done() {
		t.Fatalf("expected the note-off to be delivered")
	}
}

func TestRenderAutoStopsAfterRelease(t *testing.T) {
	e := synth.NewEngine(synth.DefaultConfig())
	seq := singleNote(60, 1, 2400)
	out := render(e, seq, nil, renderOptions{
		blockSize:  256,
		channels:   1,
		minFrames:  4800,
		maxFrames:  48000 * 5,
		threshold:  math.Pow(10, -90.0/20),
		holdBlocks: 4,
	})
	n := len(out[0])
	if n >= 48000*5 {
		t.Fatalf("expected auto-stop before the maximum, rendered %d frames", n)
	}
	if n < 4800 {
		t.Fatalf("expected at least the minimum length, got %d", n)
	}
	if tail := audioio.RMS(out[0][n-256:]); tail != 0 {
		t.Fatalf("expected silent tail after release, got RMS %g", tail)
	}
}

func TestRenderMatchesAcrossBlockSizes(t *testing.T) {
	events := []midifile.Event{
		{Frame: 0, NoteEvent: synth.NoteOn(0, 60, 0.8)},
		{Frame: 333, NoteEvent: synth.NoteOn(0, 64, 0.6)},
		{Frame: 2000, NoteEvent: synth.NoteOff(0, 60)},
		{Frame: 2500, NoteEvent: synth.NoteOff(0, 64)},
	}
	run := func(blockSize int) []float32 {
		seq := midifile.NewSequence(append([]midifile.Event(nil), events...))
		e := synth.NewEngine(synth.DefaultConfig())
		return render(e, seq, nil, renderOptions{blockSize: blockSize, channels: 1, minFrames: 6000, maxFrames: 6000})[0]
	}
	ref := run(64)
	for _, bs := range []int{1, 100, 512, 6000} {
		got := run(bs)
		for i := range ref {
			if got[i] != ref[i] {
				t.Fatalf("block size %d differs at %d: got=%v want=%v", bs, i, got[i], ref[i])
			}
		}
	}
}
