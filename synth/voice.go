package synth

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp"
)

// Ramp configures how a voice's gain moves toward a new velocity or
// pressure value.
type Ramp struct {
	Style  dsp.SmoothingStyle
	TimeMs float32
}

// DefaultVelocityRamp is a 5 ms linear ramp.
func DefaultVelocityRamp() Ramp {
	return Ramp{Style: dsp.SmoothLinear, TimeMs: 5}
}

// VoiceOptions are fixed for the lifetime of a pool.
type VoiceOptions struct {
	Waveform     dsp.Waveform
	VelocityRamp Ramp
}

// Voice is one sounding note.
type Voice struct {
	note      uint8
	frequency float32
	osc       dsp.Oscillator
	gain      dsp.GainSmoother
	env       Envelope
}

// MIDINoteToFreq returns the equal-tempered frequency of a MIDI note number
// with A4 (69) at 440 Hz. Numbers above 127 extrapolate.
func MIDINoteToFreq(note uint8) float32 {
	return float32(440 * math.Exp2((float64(note)-69)/12))
}

func newVoice(note uint8, velocity, sampleRate float32, opts VoiceOptions, params *EnvelopeParams) Voice {
	v := Voice{
		note:      note,
		frequency: MIDINoteToFreq(note),
		osc:       dsp.NewOscillator(opts.Waveform),
		gain:      dsp.NewGainSmoother(opts.VelocityRamp.Style, opts.VelocityRamp.TimeMs),
		env:       NewEnvelope(params),
	}
	v.gain.SetTarget(sampleRate, dsp.Clamp(velocity, 0, 1))
	return v
}

// Note returns the MIDI note number the voice plays.
func (v *Voice) Note() uint8 { return v.note }

// Frequency returns the oscillator frequency in Hz.
func (v *Voice) Frequency() float32 { return v.frequency }

// Stage returns the envelope stage.
func (v *Voice) Stage() Stage { return v.env.stage }

// Envelope returns a copy of the envelope state.
func (v *Voice) Envelope() Envelope { return v.env }

// Gain returns the current velocity gain.
func (v *Voice) Gain() float32 { return v.gain.Current() }

// GainTarget returns the velocity gain the voice is ramping toward.
func (v *Voice) GainTarget() float32 { return v.gain.Target() }

// Phase returns the oscillator phase.
func (v *Voice) Phase() float32 { return v.osc.Phase() }

// IsCompleted reports whether the voice has finished its release.
func (v *Voice) IsCompleted() bool { return v.env.IsCompleted() }

// Next renders one sample: oscillator times velocity gain times envelope.
// deltaMs must equal 1000/sampleRate.
func (v *Voice) Next(sampleRate, deltaMs float32, params *EnvelopeParams) float32 {
	s := v.osc.Next(v.frequency, sampleRate)
	g := v.gain.Next()
	return s * g * v.env.Next(deltaMs, params)
}

// Release starts the release stage.
func (v *Voice) Release(params *EnvelopeParams) {
	v.env.Release(params)
}

// SetPressure retargets the velocity gain.
func (v *Voice) SetPressure(pressure, sampleRate float32) {
	v.gain.SetTarget(sampleRate, dsp.Clamp(pressure, 0, 1))
}
