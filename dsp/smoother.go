package dsp

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// SmoothingStyle selects how a GainSmoother approaches its target.
type SmoothingStyle int

const (
	// SmoothLinear moves by a fixed step and lands on the target exactly
	// after the ramp time.
	SmoothLinear SmoothingStyle = iota
	// SmoothExponential shrinks the remaining distance by a fixed factor per
	// sample; after the ramp time 1e-4 of the distance is left.
	SmoothExponential
)

func (s SmoothingStyle) String() string {
	if s == SmoothExponential {
		return "exponential"
	}
	return "linear"
}

// ParseSmoothingStyle maps a preset name to a SmoothingStyle.
func ParseSmoothingStyle(name string) (SmoothingStyle, bool) {
	switch name {
	case "linear", "":
		return SmoothLinear, true
	case "exponential":
		return SmoothExponential, true
	}
	return SmoothLinear, false
}

// ln(1e-4): residual fraction left after an exponential ramp.
const expResidualLog = -9.210340371976184

// residuals below this are treated as arrival
const arrivalEpsilon = 1e-7

// GainSmoother ramps a value from its current position toward a target, one
// step per Next call. It is a plain value so voices can embed it without
// heap allocation.
type GainSmoother struct {
	style     SmoothingStyle
	timeMs    float32
	current   float32
	target    float32
	step      float32
	coef      float32
	remaining int
}

// NewGainSmoother creates a smoother resting at 0. Negative or NaN ramp
// times are clamped to 0, which makes every SetTarget jump immediately.
func NewGainSmoother(style SmoothingStyle, timeMs float32) GainSmoother {
	if !(timeMs > 0) || math.IsInf(float64(timeMs), 1) {
		timeMs = 0
	}
	return GainSmoother{style: style, timeMs: timeMs}
}

// Style returns the ramp style.
func (g *GainSmoother) Style() SmoothingStyle { return g.style }

// TimeMs returns the configured ramp time.
func (g *GainSmoother) TimeMs() float32 { return g.timeMs }

// Current returns the last produced value.
func (g *GainSmoother) Current() float32 { return g.current }

// Target returns the value being approached.
func (g *GainSmoother) Target() float32 { return g.target }

// IsSmoothing reports whether the smoother has not yet settled on its target.
func (g *GainSmoother) IsSmoothing() bool { return g.remaining > 0 }

// Reset jumps to value and stops any ramp in progress.
func (g *GainSmoother) Reset(value float32) {
	value = finiteOr(value, 0)
	g.current = value
	g.target = value
	g.step = 0
	g.remaining = 0
}

// SetTarget starts a ramp from the current value toward target lasting the
// configured time at sampleRate.
func (g *GainSmoother) SetTarget(sampleRate, target float32) {
	target = finiteOr(target, g.target)
	g.target = target

	steps := 0
	if sampleRate > 0 && g.timeMs > 0 {
		steps = int(float64(g.timeMs)*float64(sampleRate)/1000.0 + 0.5)
	}
	if steps <= 0 || target == g.current {
		g.current = target
		g.step = 0
		g.remaining = 0
		return
	}

	switch g.style {
	case SmoothExponential:
		coef := approx.FastExp(float32(expResidualLog / float64(steps)))
		if !(coef > 0) || coef >= 1 {
			coef = float32(math.Exp(expResidualLog / float64(steps)))
		}
		g.coef = coef
	default:
		g.step = (target - g.current) / float32(steps)
	}
	g.remaining = steps
}

// Next advances one sample and returns the new value.
func (g *GainSmoother) Next() float32 {
	if g.remaining <= 0 {
		return g.current
	}

	switch g.style {
	case SmoothExponential:
		dist := float32(dspcore.FlushDenormals(float64((g.current - g.target) * g.coef)))
		if math.Abs(float64(dist)) < arrivalEpsilon {
			g.current = g.target
			g.remaining = 0
			return g.current
		}
		g.current = g.target + dist
		// The ramp time only bounds the linear style; exponential keeps
		// converging until the residual is inaudible.
		if g.remaining > 1 {
			g.remaining--
		}
	default:
		g.remaining--
		if g.remaining == 0 {
			g.current = g.target
			return g.current
		}
		g.current += g.step
		if (g.step > 0 && g.current > g.target) || (g.step < 0 && g.current < g.target) {
			g.current = g.target
			g.remaining = 0
		}
	}
	return g.current
}

func finiteOr(v, fallback float32) float32 {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return fallback
	}
	return v
}
