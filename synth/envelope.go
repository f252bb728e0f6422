package synth

import (
	"fmt"
	"math"
)

// Stage is the phase an Envelope is in.
type Stage uint8

const (
	StageAttack Stage = iota
	StageHold
	StageDecay
	StageSustain
	StageRelease
	StageCompleted
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageHold:
		return "hold"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	case StageCompleted:
		return "completed"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Envelope is the amplitude state machine of one voice.
//
// The envelope stores only its position; durations and sustain are read from
// the EnvelopeParams passed to every call, so a parameter change takes effect
// on the next sample for voices already sounding.
type Envelope struct {
	stage Stage
	// elapsed ms in attack, decay and release; remaining ms in hold
	ms float32
	// amplitude captured when release began
	level float32
}

// NewEnvelope returns an envelope at the start of its attack. Zero-length
// stages are skipped immediately, so with AttackMs == 0 the first sample is
// already at full scale.
func NewEnvelope(params *EnvelopeParams) Envelope {
	e := Envelope{stage: StageAttack}
	e.settle(params)
	return e
}

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// IsCompleted reports whether the release has finished.
func (e *Envelope) IsCompleted() bool { return e.stage == StageCompleted }

// Progress returns the elapsed milliseconds of the attack, decay or release
// stage, or the remaining milliseconds of hold. It is 0 in sustain and
// completed.
func (e *Envelope) Progress() float32 { return e.ms }

// ReleaseLevel returns the amplitude the release stage started from.
func (e *Envelope) ReleaseLevel() float32 { return e.level }

// Amplitude returns the value the next call to Next will emit, without
// advancing.
func (e *Envelope) Amplitude(params *EnvelopeParams) float32 {
	c := *e
	c.settle(params)
	return c.value(params)
}

// Next returns the current amplitude and advances the envelope by deltaMs.
// The amplitude is always within [0,1].
func (e *Envelope) Next(deltaMs float32, params *EnvelopeParams) float32 {
	e.settle(params)
	amp := e.value(params)
	switch e.stage {
	case StageAttack, StageDecay, StageRelease:
		e.ms += deltaMs
	case StageHold:
		e.ms -= deltaMs
	}
	e.settle(params)
	return amp
}

// Release moves the envelope into its release stage, starting from the
// amplitude it currently has, so a note released mid-attack or mid-decay
// fades out without a jump. Releasing an envelope that is already releasing
// or completed does nothing. With ReleaseMs == 0 the envelope completes at
// once.
func (e *Envelope) Release(params *EnvelopeParams) {
	e.settle(params)
	if e.stage == StageRelease || e.stage == StageCompleted {
		return
	}
	e.level = e.value(params)
	e.stage = StageRelease
	e.ms = 0
	e.settle(params)
}

// settle performs every transition that is due at the current position. A
// chain of zero-length stages collapses in one call.
func (e *Envelope) settle(p *EnvelopeParams) {
	for {
		switch e.stage {
		case StageAttack:
			if !(e.ms >= p.AttackMs) {
				return
			}
			if p.HoldMs > 0 {
				e.stage, e.ms = StageHold, p.HoldMs
			} else {
				e.stage, e.ms = StageDecay, 0
			}
		case StageHold:
			if e.ms > 0 && e.ms <= p.HoldMs {
				return
			}
			if e.ms > p.HoldMs {
				// hold was shortened while running
				e.ms = p.HoldMs
				if e.ms > 0 {
					return
				}
			}
			e.stage, e.ms = StageDecay, 0
		case StageDecay:
			if !(e.ms >= p.DecayMs) {
				return
			}
			e.stage, e.ms = StageSustain, 0
		case StageRelease:
			if !(e.ms >= p.ReleaseMs) {
				return
			}
			e.stage, e.ms, e.level = StageCompleted, 0, 0
		default:
			return
		}
	}
}

func (e *Envelope) value(p *EnvelopeParams) float32 {
	var v float32
	switch e.stage {
	case StageAttack:
		v = p.AttackCurve.shape(progress(e.ms, p.AttackMs))
	case StageHold:
		v = 1
	case StageDecay:
		v = 1 + (p.Sustain-1)*p.DecayCurve.shape(progress(e.ms, p.DecayMs))
	case StageSustain:
		v = p.Sustain
	case StageRelease:
		v = e.level * (1 - p.ReleaseCurve.shape(progress(e.ms, p.ReleaseMs)))
	default:
		return 0
	}
	if !(v > 0) || math.IsInf(float64(v), 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func progress(elapsed, total float32) float32 {
	if !(total > 0) {
		return 1
	}
	return elapsed / total
}
