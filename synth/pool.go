package synth

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// MaxVoices is the largest pool capacity. It matches the number of distinct
// note identifiers, so a pool can never hold two live voices for one note.
const MaxVoices = 256

// VoicePool owns a fixed set of voice slots and maps note numbers to the slot
// sounding them. All storage is allocated by NewVoicePool; note handling and
// rendering never allocate.
type VoicePool struct {
	opts     VoiceOptions
	slots    []Voice
	occupied []bool
	free     []int
	noteSlot [MaxVoices]int16
	dropped  int
}

// NewVoicePool creates a pool with capacity slots, clamped to
// [1, MaxVoices].
func NewVoicePool(capacity int, opts VoiceOptions) *VoicePool {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > MaxVoices {
		capacity = MaxVoices
	}
	p := &VoicePool{
		opts:     opts,
		slots:    make([]Voice, capacity),
		occupied: make([]bool, capacity),
		free:     make([]int, 0, capacity),
	}
	p.Reset()
	return p
}

// Capacity returns the number of slots.
func (p *VoicePool) Capacity() int { return len(p.slots) }

// Len returns the number of occupied slots, including voices that have
// completed but not yet been reclaimed.
func (p *VoicePool) Len() int { return len(p.slots) - len(p.free) }

// Active returns the number of voices that have not completed.
func (p *VoicePool) Active() int {
	n := 0
	for i := range p.slots {
		if p.occupied[i] && !p.slots[i].IsCompleted() {
			n++
		}
	}
	return n
}

// Dropped returns how many note-ons were ignored because every slot was
// taken.
func (p *VoicePool) Dropped() int { return p.dropped }

// Lookup returns the voice sounding note, if any.
func (p *VoicePool) Lookup(note uint8) (*Voice, bool) {
	idx := p.noteSlot[note]
	if idx < 0 {
		return nil, false
	}
	return &p.slots[idx], true
}

// NoteOn starts a voice for note. It returns false without changing anything
// when a live voice already plays note, or when every slot holds a live
// voice. Completed voices that were not yet reclaimed give up their slots
// first.
func (p *VoicePool) NoteOn(note uint8, velocity, sampleRate float32, params *EnvelopeParams) bool {
	if idx := p.noteSlot[note]; idx >= 0 {
		if !p.slots[idx].IsCompleted() {
			return false
		}
		p.release(int(idx))
	}
	if len(p.free) == 0 && p.ReclaimCompleted() == 0 {
		p.dropped++
		return false
	}
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.slots[slot] = newVoice(note, velocity, sampleRate, p.opts, params)
	p.occupied[slot] = true
	p.noteSlot[note] = int16(slot)
	return true
}

// NoteOff moves the voice for note into its release stage. Unknown notes are
// ignored.
func (p *VoicePool) NoteOff(note uint8, params *EnvelopeParams) {
	if idx := p.noteSlot[note]; idx >= 0 {
		p.slots[idx].Release(params)
	}
}

// PolyPressure retargets the gain of the voice for note. Unknown and
// completed notes are ignored.
func (p *VoicePool) PolyPressure(note uint8, pressure, sampleRate float32) {
	idx := p.noteSlot[note]
	if idx < 0 || p.slots[idx].IsCompleted() {
		return
	}
	p.slots[idx].SetPressure(pressure, sampleRate)
}

// ReleaseAll releases every voice.
func (p *VoicePool) ReleaseAll(params *EnvelopeParams) {
	for i := range p.slots {
		if p.occupied[i] {
			p.slots[i].Release(params)
		}
	}
}

// AdvanceAndSum advances every occupied voice by one sample and returns the
// sum of their outputs. Denormal results are flushed to zero.
func (p *VoicePool) AdvanceAndSum(sampleRate float32, params *EnvelopeParams) float32 {
	if !(sampleRate > 0) {
		return 0
	}
	deltaMs := 1000 / sampleRate
	var sum float32
	for i := range p.slots {
		if !p.occupied[i] {
			continue
		}
		sum += p.slots[i].Next(sampleRate, deltaMs, params)
	}
	return float32(dspcore.FlushDenormals(float64(sum)))
}

// ReclaimCompleted frees the slots of completed voices and returns how many
// were freed.
func (p *VoicePool) ReclaimCompleted() int {
	n := 0
	for i := range p.slots {
		if p.occupied[i] && p.slots[i].IsCompleted() {
			p.release(i)
			n++
		}
	}
	return n
}

// Reset silences and frees every voice.
func (p *VoicePool) Reset() {
	for i := range p.noteSlot {
		p.noteSlot[i] = -1
	}
	p.free = p.free[:0]
	for i := len(p.slots) - 1; i >= 0; i-- {
		p.slots[i] = Voice{}
		p.occupied[i] = false
		p.free = append(p.free, i)
	}
	p.dropped = 0
}

func (p *VoicePool) release(slot int) {
	note := p.slots[slot].note
	if int(p.noteSlot[note]) == slot {
		p.noteSlot[note] = -1
	}
	p.occupied[slot] = false
	p.free = append(p.free, slot)
}
