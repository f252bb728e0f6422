package synth

import (
	"math"
	"testing"
)

const testRate = 48000

const testDeltaMs = float32(1000.0 / testRate)

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}

// renderBlocks runs e over consecutive mono blocks of the given sizes. The
// events for block i are taken from events[i] when present.
func renderBlocks(e *Engine, sizes []int, events [][]NoteEvent, controls ControlSource) []float32 {
	var out []float32
	list := NewEventList(0)
	for i, n := range sizes {
		buf := make([]float32, n)
		if i < len(events) {
			list.Reset(events[i])
		} else {
			list.Reset(nil)
		}
		e.Process([][]float32{buf}, list, controls)
		out = append(out, buf...)
	}
	return out
}

func collectSteps(t *testing.T, s *Scheduler) []Step {
	t.Helper()
	var steps []Step
	for i := 0; ; i++ {
		if i > 10000 {
			t.Fatalf("scheduler did not terminate")
		}
		step, ok := s.Next()
		if !ok {
			return steps
		}
		steps = append(steps, step)
	}
}

func testEngineConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	return cfg
}
