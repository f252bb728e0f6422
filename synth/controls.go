package synth

import "github.com/cwbudde/algo-synth/dsp"

const (
	gainSmoothMs     = 3
	envelopeSmoothMs = 5
)

// SmoothedControls is a ControlSource that ramps host parameter changes: the
// master gain over 3 ms and envelope times and sustain over 5 ms. Setters
// clamp their input into the host parameter ranges (MinGainDB..MaxGainDB,
// 0..MaxAttackMs and so on). Curves switch immediately.
type SmoothedControls struct {
	sampleRate float32

	gain    dsp.GainSmoother
	attack  dsp.GainSmoother
	hold    dsp.GainSmoother
	decay   dsp.GainSmoother
	sustain dsp.GainSmoother
	release dsp.GainSmoother

	attackCurve  Curve
	decayCurve   Curve
	releaseCurve Curve
}

// NewSmoothedControls creates a source that starts at initial without
// ramping.
func NewSmoothedControls(sampleRate float32, initial Controls) *SmoothedControls {
	c := &SmoothedControls{
		sampleRate: sampleRate,
		gain:       dsp.NewGainSmoother(dsp.SmoothLinear, gainSmoothMs),
		attack:     dsp.NewGainSmoother(dsp.SmoothLinear, envelopeSmoothMs),
		hold:       dsp.NewGainSmoother(dsp.SmoothLinear, envelopeSmoothMs),
		decay:      dsp.NewGainSmoother(dsp.SmoothLinear, envelopeSmoothMs),
		sustain:    dsp.NewGainSmoother(dsp.SmoothLinear, envelopeSmoothMs),
		release:    dsp.NewGainSmoother(dsp.SmoothLinear, envelopeSmoothMs),
	}
	c.Jump(initial)
	return c
}

// SetSampleRate changes the rate used for ramp lengths. Ramps in flight keep
// their current step size.
func (c *SmoothedControls) SetSampleRate(sampleRate float32) {
	if sampleRate > 0 {
		c.sampleRate = sampleRate
	}
}

// Jump sets every value without ramping.
func (c *SmoothedControls) Jump(ctrl Controls) {
	c.gain.Reset(clampGainDB(ctrl.GainDB))
	c.attack.Reset(dsp.Clamp(ctrl.Envelope.AttackMs, 0, MaxAttackMs))
	c.hold.Reset(dsp.Clamp(ctrl.Envelope.HoldMs, 0, MaxHoldMs))
	c.decay.Reset(dsp.Clamp(ctrl.Envelope.DecayMs, 0, MaxDecayMs))
	c.sustain.Reset(dsp.Clamp(ctrl.Envelope.Sustain, 0, 1))
	c.release.Reset(dsp.Clamp(ctrl.Envelope.ReleaseMs, 0, MaxReleaseMs))
	c.SetCurves(ctrl.Envelope.AttackCurve, ctrl.Envelope.DecayCurve, ctrl.Envelope.ReleaseCurve)
}

// Set ramps every value toward ctrl.
func (c *SmoothedControls) Set(ctrl Controls) {
	c.SetGainDB(ctrl.GainDB)
	c.SetAttackMs(ctrl.Envelope.AttackMs)
	c.SetHoldMs(ctrl.Envelope.HoldMs)
	c.SetDecayMs(ctrl.Envelope.DecayMs)
	c.SetSustain(ctrl.Envelope.Sustain)
	c.SetReleaseMs(ctrl.Envelope.ReleaseMs)
	c.SetCurves(ctrl.Envelope.AttackCurve, ctrl.Envelope.DecayCurve, ctrl.Envelope.ReleaseCurve)
}

// SetGainDB ramps the master gain toward db, clamped to MinGainDB..MaxGainDB.
func (c *SmoothedControls) SetGainDB(db float32) {
	c.gain.SetTarget(c.sampleRate, clampGainDB(db))
}

// SetAttackMs ramps the attack time toward ms.
func (c *SmoothedControls) SetAttackMs(ms float32) {
	c.attack.SetTarget(c.sampleRate, dsp.Clamp(ms, 0, MaxAttackMs))
}

// SetHoldMs ramps the hold time toward ms.
func (c *SmoothedControls) SetHoldMs(ms float32) {
	c.hold.SetTarget(c.sampleRate, dsp.Clamp(ms, 0, MaxHoldMs))
}

// SetDecayMs ramps the decay time toward ms.
func (c *SmoothedControls) SetDecayMs(ms float32) {
	c.decay.SetTarget(c.sampleRate, dsp.Clamp(ms, 0, MaxDecayMs))
}

// SetSustain ramps the sustain level toward level, clamped to 0..1.
func (c *SmoothedControls) SetSustain(level float32) {
	c.sustain.SetTarget(c.sampleRate, dsp.Clamp(level, 0, 1))
}

// SetReleaseMs ramps the release time toward ms.
func (c *SmoothedControls) SetReleaseMs(ms float32) {
	c.release.SetTarget(c.sampleRate, dsp.Clamp(ms, 0, MaxReleaseMs))
}

// SetCurves replaces the stage curves immediately.
func (c *SmoothedControls) SetCurves(attack, decay, release Curve) {
	c.attackCurve, c.decayCurve, c.releaseCurve = attack, decay, release
}

// Current returns the present values without advancing the ramps.
func (c *SmoothedControls) Current() Controls {
	return Controls{
		GainDB: c.gain.Current(),
		Envelope: EnvelopeParams{
			AttackMs:     c.attack.Current(),
			HoldMs:       c.hold.Current(),
			DecayMs:      c.decay.Current(),
			Sustain:      c.sustain.Current(),
			ReleaseMs:    c.release.Current(),
			AttackCurve:  c.attackCurve,
			DecayCurve:   c.decayCurve,
			ReleaseCurve: c.releaseCurve,
		},
	}
}

// NextControls advances every ramp by one step and returns the result.
func (c *SmoothedControls) NextControls() Controls {
	c.gain.Next()
	c.attack.Next()
	c.hold.Next()
	c.decay.Next()
	c.sustain.Next()
	c.release.Next()
	return c.Current()
}

func clampGainDB(db float32) float32 {
	return dsp.Clamp(db, MinGainDB, MaxGainDB)
}
