package preset

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/cwbudde/algo-synth/dsp"
	"github.com/cwbudde/algo-synth/synth"
)

// File is the JSON schema for synth presets. Every field is optional.
type File struct {
	SampleRate        *float32 `json:"sample_rate"`
	MaxVoices         *int     `json:"max_voices"`
	Waveform          string   `json:"waveform"`
	VelocityRampMs    *float32 `json:"velocity_ramp_ms"`
	VelocityRampStyle string   `json:"velocity_ramp_style"`
	ControlRate       string   `json:"control_rate"`

	GainDB       *float32 `json:"gain_db"`
	AttackMs     *float32 `json:"attack_ms"`
	HoldMs       *float32 `json:"hold_ms"`
	DecayMs      *float32 `json:"decay_ms"`
	Sustain      *float32 `json:"sustain"`
	ReleaseMs    *float32 `json:"release_ms"`
	AttackCurve  string   `json:"attack_curve"`
	DecayCurve   string   `json:"decay_curve"`
	ReleaseCurve string   `json:"release_curve"`
}

// Preset is an engine configuration plus the initial control values.
type Preset struct {
	Config   synth.Config
	Controls synth.Controls
}

// Default returns the engine and control defaults.
func Default() *Preset {
	return &Preset{
		Config:   synth.DefaultConfig(),
		Controls: synth.DefaultControls(),
	}
}

// LoadJSON loads a preset JSON file and applies it on top of Default.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read preset")
	}
	p, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "preset %s", path)
	}
	return p, nil
}

// Parse decodes preset JSON and applies it on top of Default.
func Parse(b []byte) (*Preset, error) {
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "decode preset")
	}
	p := Default()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset. Enum names
// must be known; numeric values are stored as given and clamped later by the
// engine.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return errors.New("nil destination preset")
	}
	if f == nil {
		return nil
	}

	cfg := &dst.Config
	if f.SampleRate != nil {
		if *f.SampleRate <= 0 {
			return errors.Errorf("sample_rate must be > 0")
		}
		cfg.SampleRate = *f.SampleRate
	}
	if f.MaxVoices != nil {
		cfg.MaxVoices = *f.MaxVoices
	}
	if name := strings.TrimSpace(f.Waveform); name != "" {
		w, ok := dsp.ParseWaveform(name)
		if !ok {
			return errors.Errorf("unknown waveform %q", name)
		}
		cfg.Waveform = w
	}
	if f.VelocityRampMs != nil {
		cfg.VelocityRamp.TimeMs = *f.VelocityRampMs
	}
	if name := strings.TrimSpace(f.VelocityRampStyle); name != "" {
		s, ok := dsp.ParseSmoothingStyle(name)
		if !ok {
			return errors.Errorf("unknown velocity_ramp_style %q", name)
		}
		cfg.VelocityRamp.Style = s
	}
	if name := strings.TrimSpace(f.ControlRate); name != "" {
		r, ok := synth.ParseControlRate(name)
		if !ok {
			return errors.Errorf("unknown control_rate %q", name)
		}
		cfg.ControlRate = r
	}

	ctl := &dst.Controls
	if f.GainDB != nil {
		ctl.GainDB = *f.GainDB
	}
	env := &ctl.Envelope
	if f.AttackMs != nil {
		env.AttackMs = *f.AttackMs
	}
	if f.HoldMs != nil {
		env.HoldMs = *f.HoldMs
	}
	if f.DecayMs != nil {
		env.DecayMs = *f.DecayMs
	}
	if f.Sustain != nil {
		env.Sustain = *f.Sustain
	}
	if f.ReleaseMs != nil {
		env.ReleaseMs = *f.ReleaseMs
	}

	curves := []struct {
		key  string
		name string
		dst  *synth.Curve
	}{
		{"attack_curve", f.AttackCurve, &env.AttackCurve},
		{"decay_curve", f.DecayCurve, &env.DecayCurve},
		{"release_curve", f.ReleaseCurve, &env.ReleaseCurve},
	}
	for _, c := range curves {
		name := strings.TrimSpace(c.name)
		if name == "" {
			continue
		}
		curve, ok := synth.ParseCurve(name)
		if !ok {
			return errors.Errorf("unknown %s %q", c.key, name)
		}
		*c.dst = curve
	}
	return nil
}
