package analysis

const (
	envFrame = 256
	envHop   = 128
	// onset threshold, about -80 dBFS
	onsetThreshold = 1e-4
)

// Report summarises one rendered signal.
type Report struct {
	SampleRate  int     `json:"sample_rate"`
	Frames      int     `json:"frames"`
	DurationSec float64 `json:"duration_sec"`

	Peak     float64 `json:"peak"`
	PeakDBFS float64 `json:"peak_dbfs"`
	RMS      float64 `json:"rms"`
	RMSDBFS  float64 `json:"rms_dbfs"`

	OnsetSec    float64 `json:"onset_sec"`
	AttackMs    float64 `json:"attack_ms"`
	DecayDBPerS float64 `json:"decay_db_per_s"`
	DominantHz  float64 `json:"dominant_hz"`

	Silent bool `json:"silent"`
}

// Analyze measures x. Quantities that cannot be measured, such as the decay
// slope of a sustained tone, are reported as 0. A signal that never crosses
// the onset threshold is reported as Silent.
func Analyze(x []float64, sampleRate int) Report {
	r := Report{
		SampleRate: sampleRate,
		Frames:     len(x),
	}
	if sampleRate <= 0 {
		r.Silent = true
		return r
	}
	r.DurationSec = float64(len(x)) / float64(sampleRate)
	r.Peak = Peak(x)
	r.PeakDBFS = LinToDB(r.Peak)
	r.RMS = RMS(x)
	r.RMSDBFS = LinToDB(r.RMS)

	onset := Onset(x, onsetThreshold)
	if onset < 0 {
		r.Silent = true
		return r
	}
	r.OnsetSec = float64(onset) / float64(sampleRate)

	body := x[onset:]
	env := Envelope(body, envFrame, envHop)
	hopSec := float64(envHop) / float64(sampleRate)
	if len(env) > 0 {
		peakIdx := 0
		for i, v := range env {
			if v > env[peakIdx] {
				peakIdx = i
			}
		}
		r.AttackMs = float64(peakIdx) * hopSec * 1000
	}
	r.DecayDBPerS = finiteOrZero(decaySlopeDBPerS(env, hopSec))

	if hz, err := DominantFrequency(body, sampleRate); err == nil {
		r.DominantHz = hz
	}
	return r
}
