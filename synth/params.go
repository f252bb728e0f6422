package synth

import (
	"math"

	"github.com/cwbudde/algo-synth/dsp"
)

// Curve selects the interpolation shape of an envelope stage.
type Curve uint8

const (
	CurveLinear Curve = iota
	CurveExponential
)

func (c Curve) String() string {
	if c == CurveExponential {
		return "exponential"
	}
	return "linear"
}

// ParseCurve maps a preset name to a Curve.
func ParseCurve(name string) (Curve, bool) {
	switch name {
	case "linear", "":
		return CurveLinear, true
	case "exponential":
		return CurveExponential, true
	}
	return CurveLinear, false
}

// curvature of the exponential shape
const expCurveK = 5.0

var expCurveNorm = 1 - math.Exp(-expCurveK)

// shape maps stage progress t in [0,1] to [0,1]. Both shapes are monotone,
// return exactly 0 at t=0 and exactly 1 at t=1.
func (c Curve) shape(t float32) float32 {
	if !(t > 0) {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if c == CurveExponential {
		return float32((1 - math.Exp(-expCurveK*float64(t))) / expCurveNorm)
	}
	return t
}

// Parameter ranges used when clamping host controls.
const (
	MinGainDB    = -30.0
	MaxGainDB    = 0.0
	MaxAttackMs  = 1000.0
	MaxHoldMs    = 2000.0
	MaxDecayMs   = 5000.0
	MaxReleaseMs = 5000.0
)

// EnvelopeParams is the envelope policy shared by every voice. Durations are
// in milliseconds, Sustain is a fraction of full scale.
type EnvelopeParams struct {
	AttackMs  float32
	HoldMs    float32
	DecayMs   float32
	Sustain   float32
	ReleaseMs float32

	AttackCurve  Curve
	DecayCurve   Curve
	ReleaseCurve Curve
}

// DefaultEnvelopeParams returns an envelope that opens instantly, decays to
// full sustain in 40 ms and releases in 40 ms.
func DefaultEnvelopeParams() EnvelopeParams {
	return EnvelopeParams{
		AttackMs:  0,
		HoldMs:    0,
		DecayMs:   40,
		Sustain:   1,
		ReleaseMs: 40,
	}
}

// Sanitize clamps every field into its domain: durations to [0, MaxFloat32],
// sustain to [0,1], unknown curves to linear. NaN maps to the lower bound.
func (p EnvelopeParams) Sanitize() EnvelopeParams {
	p.AttackMs = clampDuration(p.AttackMs)
	p.HoldMs = clampDuration(p.HoldMs)
	p.DecayMs = clampDuration(p.DecayMs)
	p.ReleaseMs = clampDuration(p.ReleaseMs)
	p.Sustain = dsp.Clamp(p.Sustain, 0, 1)
	if p.AttackCurve > CurveExponential {
		p.AttackCurve = CurveLinear
	}
	if p.DecayCurve > CurveExponential {
		p.DecayCurve = CurveLinear
	}
	if p.ReleaseCurve > CurveExponential {
		p.ReleaseCurve = CurveLinear
	}
	return p
}

func clampDuration(ms float32) float32 {
	return dsp.Clamp(ms, 0, math.MaxFloat32)
}

// Controls are the continuously varying inputs read while processing.
// GainDB is the master gain in decibels.
type Controls struct {
	GainDB   float32
	Envelope EnvelopeParams
}

// DefaultControls returns -10 dB master gain and DefaultEnvelopeParams.
func DefaultControls() Controls {
	return Controls{GainDB: -10, Envelope: DefaultEnvelopeParams()}
}

// Sanitize clamps the gain to [dsp.MinusInfDB, MaxGainDB] and the envelope
// to its domain.
func (c Controls) Sanitize() Controls {
	c.GainDB = dsp.Clamp(c.GainDB, dsp.MinusInfDB, MaxGainDB)
	c.Envelope = c.Envelope.Sanitize()
	return c
}

// ControlSource delivers controls, already smoothed, once per sample or
// once per block depending on the engine's ControlRate.
type ControlSource interface {
	NextControls() Controls
}

// StaticControls is a ControlSource that always returns the same values.
type StaticControls struct {
	Controls
}

// NextControls implements ControlSource.
func (s *StaticControls) NextControls() Controls {
	return s.Controls
}

// ControlRate selects how often the engine pulls its ControlSource.
type ControlRate uint8

const (
	ControlPerSample ControlRate = iota
	ControlPerBlock
)

func (r ControlRate) String() string {
	if r == ControlPerBlock {
		return "block"
	}
	return "sample"
}

// ParseControlRate maps a preset name to a ControlRate.
func ParseControlRate(name string) (ControlRate, bool) {
	switch name {
	case "sample", "":
		return ControlPerSample, true
	case "block":
		return ControlPerBlock, true
	}
	return ControlPerSample, false
}
