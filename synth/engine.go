package synth

import (
	"github.com/cwbudde/algo-synth/dsp"
)

// Config holds the settings fixed at engine construction.
type Config struct {
	SampleRate       float32
	MaxVoices        int
	Waveform         dsp.Waveform
	VelocityRamp     Ramp
	ControlRate      ControlRate
	DeferredCapacity int
}

// DefaultConfig returns a 48 kHz, 16-voice sine engine with per-sample
// controls.
func DefaultConfig() Config {
	return Config{
		SampleRate:       48000,
		MaxVoices:        16,
		Waveform:         dsp.WaveSine,
		VelocityRamp:     DefaultVelocityRamp(),
		ControlRate:      ControlPerSample,
		DeferredCapacity: DefaultDeferredCapacity,
	}
}

// Sanitize replaces out-of-range settings with defaults or clamps them.
func (c Config) Sanitize() Config {
	def := DefaultConfig()
	if !(c.SampleRate > 0) || c.SampleRate > 1536000 {
		c.SampleRate = def.SampleRate
	}
	if c.MaxVoices < 1 {
		c.MaxVoices = 1
	}
	if c.MaxVoices > MaxVoices {
		c.MaxVoices = MaxVoices
	}
	if c.Waveform < dsp.WaveSine || c.Waveform > dsp.WaveTriangle {
		c.Waveform = dsp.WaveSine
	}
	if c.VelocityRamp.Style < dsp.SmoothLinear || c.VelocityRamp.Style > dsp.SmoothExponential {
		c.VelocityRamp.Style = dsp.SmoothLinear
	}
	c.VelocityRamp.TimeMs = dsp.Clamp(c.VelocityRamp.TimeMs, 0, 1000)
	if c.ControlRate > ControlPerBlock {
		c.ControlRate = ControlPerSample
	}
	if c.DeferredCapacity < 1 {
		c.DeferredCapacity = 1
	}
	return c
}

// Engine renders polyphonic audio from timed note events.
//
// Process is meant to run on a real-time thread: after NewEngine returns it
// performs no allocation, locking or I/O. An Engine is not safe for
// concurrent use.
type Engine struct {
	cfg        Config
	sampleRate float32
	pool       *VoicePool
	sched      *Scheduler

	controls Controls
	primed   bool
}

// NewEngine creates an engine from cfg after sanitizing it.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.Sanitize()
	return &Engine{
		cfg:        cfg,
		sampleRate: cfg.SampleRate,
		pool: NewVoicePool(cfg.MaxVoices, VoiceOptions{
			Waveform:     cfg.Waveform,
			VelocityRamp: cfg.VelocityRamp,
		}),
		sched:    NewScheduler(cfg.DeferredCapacity),
		controls: DefaultControls(),
	}
}

// Config returns the sanitized configuration.
func (e *Engine) Config() Config { return e.cfg }

// SampleRate returns the current sample rate.
func (e *Engine) SampleRate() float32 { return e.sampleRate }

// Pool exposes the voice pool for inspection.
func (e *Engine) Pool() *VoicePool { return e.pool }

// Scheduler exposes the block scheduler for inspection.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Controls returns the controls most recently read.
func (e *Engine) Controls() Controls { return e.controls }

// SetSampleRate changes the sample rate. Voices are reset when the rate
// actually changes, since their ramps and phases were computed for the old
// one. Invalid rates are ignored.
func (e *Engine) SetSampleRate(rate float32) {
	if !(rate > 0) || rate == e.sampleRate {
		return
	}
	e.sampleRate = rate
	e.cfg.SampleRate = rate
	e.Reset()
}

// Reset silences all voices and drops deferred events.
func (e *Engine) Reset() {
	e.pool.Reset()
	e.sched.Reset()
}

// Process renders one block into out. Every channel receives the same mono
// signal; the block length is the length of the shortest channel. events
// and controls may be nil.
func (e *Engine) Process(out [][]float32, events EventSource, controls ControlSource) {
	n := blockLength(out)

	if controls != nil && (e.cfg.ControlRate == ControlPerBlock || !e.primed) {
		e.controls = controls.NextControls().Sanitize()
		e.primed = true
	}

	e.sched.Begin(n, events)
	for {
		step, ok := e.sched.Next()
		if !ok {
			break
		}
		switch step.Kind {
		case StepEvent:
			e.apply(step.Event)
		case StepRender:
			e.render(out, step.Start, step.End, controls)
		}
	}
	e.pool.ReclaimCompleted()
}

func (e *Engine) apply(ev NoteEvent) {
	switch ev.Kind {
	case EventNoteOn:
		e.pool.NoteOn(ev.Note, ev.Value, e.sampleRate, &e.controls.Envelope)
	case EventNoteOff:
		e.pool.NoteOff(ev.Note, &e.controls.Envelope)
	case EventPolyPressure:
		e.pool.PolyPressure(ev.Note, ev.Value, e.sampleRate)
	}
}

func (e *Engine) render(out [][]float32, start, end int, controls ControlSource) {
	perSample := controls != nil && e.cfg.ControlRate == ControlPerSample
	gain := dsp.DBToGain(e.controls.GainDB)
	for i := start; i < end; i++ {
		if perSample {
			e.controls = controls.NextControls().Sanitize()
			gain = dsp.DBToGain(e.controls.GainDB)
		}
		v := e.pool.AdvanceAndSum(e.sampleRate, &e.controls.Envelope) * gain
		for ch := range out {
			out[ch][i] = v
		}
	}
}

func blockLength(out [][]float32) int {
	if len(out) == 0 {
		return 0
	}
	n := len(out[0])
	for _, ch := range out[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}
