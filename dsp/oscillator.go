package dsp

import "math"

// Waveform selects the periodic function an Oscillator evaluates.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
)

// String returns the preset name of the waveform.
func (w Waveform) String() string {
	switch w {
	case WaveSaw:
		return "saw"
	case WaveSquare:
		return "square"
	case WaveTriangle:
		return "triangle"
	default:
		return "sine"
	}
}

// ParseWaveform maps a preset name to a Waveform.
func ParseWaveform(name string) (Waveform, bool) {
	switch name {
	case "sine", "":
		return WaveSine, true
	case "saw":
		return WaveSaw, true
	case "square":
		return WaveSquare, true
	case "triangle":
		return WaveTriangle, true
	}
	return WaveSine, false
}

// Oscillator is a phase accumulator. The phase is kept in [0,1) and the
// frequency is supplied on every call, so one value can serve any voice.
// The zero value is a sine oscillator at phase 0.
type Oscillator struct {
	phase    float32
	waveform Waveform
}

// NewOscillator returns an oscillator at phase 0.
func NewOscillator(w Waveform) Oscillator {
	return Oscillator{waveform: w}
}

// Phase returns the current position within the cycle.
func (o *Oscillator) Phase() float32 {
	return o.phase
}

// Waveform returns the configured waveform.
func (o *Oscillator) Waveform() Waveform {
	return o.waveform
}

// Reset sets the phase back to 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Next returns the waveform value at the current phase and then advances the
// phase by frequency/sampleRate.
func (o *Oscillator) Next(frequency, sampleRate float32) float32 {
	sample := o.value()
	o.advance(frequency, sampleRate)
	return sample
}

func (o *Oscillator) value() float32 {
	p := o.phase
	switch o.waveform {
	case WaveSaw:
		return 2*p - 1
	case WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		if p < 0.5 {
			return 4*p - 1
		}
		return 3 - 4*p
	default:
		return float32(math.Sin(2 * math.Pi * float64(p)))
	}
}

func (o *Oscillator) advance(frequency, sampleRate float32) {
	if !(sampleRate > 0) {
		return
	}
	inc := frequency / sampleRate
	if !(inc > 0) || math.IsInf(float64(inc), 0) {
		return
	}
	p := o.phase + inc
	if p >= 1 {
		p -= 1
		if p >= 1 {
			p -= float32(math.Floor(float64(p)))
		}
	}
	// Rounding in the floor reduction can land exactly on 1.
	if p >= 1 || p < 0 {
		p = 0
	}
	o.phase = p
}
