package main

import (
	"github.com/cwbudde/algo-synth/internal/audioio"
	"github.com/cwbudde/algo-synth/midifile"
	"github.com/cwbudde/algo-synth/synth"
)

type renderOptions struct {
	blockSize int
	channels  int
	minFrames int
	maxFrames int
	// linear RMS below which rendering stops once all events are played;
	// 0 renders exactly maxFrames
	threshold  float64
	holdBlocks int
}

func singleNote(note uint8, velocity float32, releaseFrame int64) *midifile.Sequence {
	if releaseFrame < 0 {
		releaseFrame = 0
	}
	return midifile.NewSequence([]midifile.Event{
		{Frame: 0, NoteEvent: synth.NoteOn(0, note, velocity)},
		{Frame: releaseFrame, NoteEvent: synth.NoteOff(0, note)},
	})
}

// render drives e block by block the way a host would, feeding each block
// the sequence events that fall inside it.
func render(e *synth.Engine, seq *midifile.Sequence, controls synth.ControlSource, opts renderOptions) [][]float32 {
	if opts.maxFrames < opts.minFrames {
		opts.maxFrames = opts.minFrames
	}
	if opts.holdBlocks < 1 {
		opts.holdBlocks = 1
	}

	out := make([][]float32, opts.channels)
	block := make([][]float32, opts.channels)
	view := make([][]float32, opts.channels)
	for c := range block {
		out[c] = make([]float32, 0, opts.minFrames)
		block[c] = make([]float32, opts.blockSize)
	}
	list := synth.NewEventList(64)

	var frame int64
	below := 0
	for frame < int64(opts.maxFrames) {
		n := opts.blockSize
		if rem := int64(opts.maxFrames) - frame; rem < int64(n) {
			n = int(rem)
		}
		for c := range view {
			view[c] = block[c][:n]
		}
		seq.Fill(list, frame, n)
		e.Process(view, list, controls)
		for c := range out {
			out[c] = append(out[c], view[c]...)
		}
		frame += int64(n)

		if opts.threshold > 0 && frame >= int64(opts.minFrames) && seq.Done() {
			if audioio.RMS(view[0]) < opts.threshold {
				below++
				if below >= opts.holdBlocks {
					break
				}
			} else {
				below = 0
			}
		}
	}
	return out
}
