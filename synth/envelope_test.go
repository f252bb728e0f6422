package synth

import (
	"math"
	"testing"
)

func TestEnvelopeDefaultsStartAtFullScale(t *testing.T) {
	p := DefaultEnvelopeParams()
	e := NewEnvelope(&p)
	if e.Stage() != StageDecay {
		t.Fatalf("expected zero attack to skip into decay, got %s", e.Stage())
	}
	if got := e.Next(testDeltaMs, &p); got != 1 {
		t.Fatalf("expected first amplitude 1: got=%v", got)
	}
}

func TestEnvelopeVisitsStagesInOrder(t *testing.T) {
	p := EnvelopeParams{AttackMs: 1, HoldMs: 1, DecayMs: 1, Sustain: 0.5, ReleaseMs: 1}
	e := NewEnvelope(&p)

	counts := map[Stage]int{}
	var order []Stage
	prev := float32(-1)
	var lastStage Stage = 255
	for i := 0; i < 400; i++ {
		st := e.Stage()
		v := e.Next(testDeltaMs, &p)
		if v < 0 || v > 1 {
			t.Fatalf("amplitude out of range at %d: %v", i, v)
		}
		if st != lastStage {
			order = append(order, st)
			lastStage = st
			prev = v
			switch st {
			case StageAttack:
				if v != 0 {
					t.Fatalf("expected attack to start at 0, got %v", v)
				}
			case StageDecay:
				if v != 1 {
					t.Fatalf("expected decay to start at 1, got %v", v)
				}
			}
		} else {
			switch st {
			case StageAttack:
				if v <= prev {
					t.Fatalf("expected rising attack at %d: %v -> %v", i, prev, v)
				}
			case StageDecay:
				if v > prev || v < p.Sustain {
					t.Fatalf("expected decay toward sustain at %d: %v -> %v", i, prev, v)
				}
			}
			prev = v
		}
		switch st {
		case StageHold:
			if v != 1 {
				t.Fatalf("expected hold at 1, got %v", v)
			}
		case StageSustain:
			if v != p.Sustain {
				t.Fatalf("expected exact sustain level: got=%v want=%v", v, p.Sustain)
			}
		}
		counts[st]++
	}

	want := []Stage{StageAttack, StageHold, StageDecay, StageSustain}
	if len(order) != len(want) {
		t.Fatalf("unexpected stage order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected stage order: %v", order)
		}
	}
	for _, st := range []Stage{StageAttack, StageHold, StageDecay} {
		if c := counts[st]; c < 47 || c > 49 {
			t.Fatalf("expected ~48 samples of %s, got %d", st, c)
		}
	}

	e.Release(&p)
	if e.Stage() != StageRelease {
		t.Fatalf("expected release stage, got %s", e.Stage())
	}
	first := e.Next(testDeltaMs, &p)
	if first != p.Sustain {
		t.Fatalf("expected release to start at sustain level: got=%v", first)
	}
	n := 1
	prev = first
	for !e.IsCompleted() {
		v := e.Next(testDeltaMs, &p)
		if v > prev {
			t.Fatalf("release rose: %v -> %v", prev, v)
		}
		prev = v
		n++
		if n > 1000 {
			t.Fatalf("release never completed")
		}
	}
	if n < 47 || n > 49 {
		t.Fatalf("expected ~48 release samples, got %d", n)
	}
	if got := e.Next(testDeltaMs, &p); got != 0 {
		t.Fatalf("expected completed envelope to emit 0, got %v", got)
	}
}

func TestEnvelopeZeroLengthStagesCollapse(t *testing.T) {
	p := EnvelopeParams{Sustain: 0.7}
	e := NewEnvelope(&p)
	if e.Stage() != StageSustain {
		t.Fatalf("expected all zero stages to land in sustain, got %s", e.Stage())
	}
	if got := e.Next(testDeltaMs, &p); got != 0.7 {
		t.Fatalf("expected sustain on first sample, got %v", got)
	}

	e.Release(&p)
	if !e.IsCompleted() {
		t.Fatalf("expected zero release to complete immediately, got %s", e.Stage())
	}
	if got := e.Next(testDeltaMs, &p); got != 0 {
		t.Fatalf("expected silence after zero release, got %v", got)
	}
}

func TestEnvelopeReleaseMidAttackHasNoJump(t *testing.T) {
	p := DefaultEnvelopeParams()
	p.AttackMs = 10
	e := NewEnvelope(&p)

	var last float32
	for i := 0; i < 240; i++ {
		last = e.Next(testDeltaMs, &p)
	}
	before := e.Amplitude(&p)
	e.Release(&p)
	if lvl := e.ReleaseLevel(); math.Abs(float64(lvl-before)) > 1e-6 {
		t.Fatalf("expected release to capture current level: got=%v want=%v", lvl, before)
	}
	if math.Abs(float64(before)-0.5) > 0.01 {
		t.Fatalf("expected ~0.5 halfway through attack, got %v", before)
	}
	first := e.Next(testDeltaMs, &p)
	if math.Abs(float64(first-last)) > 0.01 {
		t.Fatalf("expected no jump on release: last attack=%v first release=%v", last, first)
	}
}

func TestEnvelopeReleaseIsIdempotent(t *testing.T) {
	p := DefaultEnvelopeParams()
	p.Sustain = 0.8
	e := NewEnvelope(&p)
	for i := 0; i < 4000; i++ {
		e.Next(testDeltaMs, &p)
	}
	e.Release(&p)
	for i := 0; i < 100; i++ {
		e.Next(testDeltaMs, &p)
	}
	progress := e.Progress()
	level := e.ReleaseLevel()
	e.Release(&p)
	if e.Progress() != progress || e.ReleaseLevel() != level {
		t.Fatalf("expected second release to be a no-op")
	}

	for !e.IsCompleted() {
		e.Next(testDeltaMs, &p)
	}
	e.Release(&p)
	if !e.IsCompleted() {
		t.Fatalf("expected completed envelope to stay completed")
	}
}

func TestEnvelopeFollowsParameterChanges(t *testing.T) {
	p := DefaultEnvelopeParams()
	p.DecayMs = 1
	p.Sustain = 0.6
	e := NewEnvelope(&p)
	for i := 0; i < 200; i++ {
		e.Next(testDeltaMs, &p)
	}
	if e.Stage() != StageSustain {
		t.Fatalf("expected sustain, got %s", e.Stage())
	}
	p.Sustain = 0.3
	if got := e.Next(testDeltaMs, &p); got != 0.3 {
		t.Fatalf("expected new sustain on next sample, got %v", got)
	}

	// shortening the release below the elapsed time completes it
	p.ReleaseMs = 100
	e.Release(&p)
	for i := 0; i < 480; i++ {
		e.Next(testDeltaMs, &p)
	}
	p.ReleaseMs = 5
	e.Next(testDeltaMs, &p)
	if !e.IsCompleted() {
		t.Fatalf("expected shortened release to complete, got %s", e.Stage())
	}
}

func TestExponentialCurvesStayMonotoneAndBounded(t *testing.T) {
	p := EnvelopeParams{
		AttackMs: 5, DecayMs: 5, Sustain: 0.25, ReleaseMs: 5,
		AttackCurve: CurveExponential, DecayCurve: CurveExponential, ReleaseCurve: CurveExponential,
	}
	e := NewEnvelope(&p)
	prev := float32(-1)
	for e.Stage() == StageAttack {
		v := e.Next(testDeltaMs, &p)
		if v < prev || v > 1 {
			t.Fatalf("attack not monotone: %v -> %v", prev, v)
		}
		prev = v
	}
	prev = 2
	for e.Stage() == StageDecay {
		v := e.Next(testDeltaMs, &p)
		if v > prev || v < 0.25 {
			t.Fatalf("decay not monotone: %v -> %v", prev, v)
		}
		prev = v
	}
	if got := e.Next(testDeltaMs, &p); got != 0.25 {
		t.Fatalf("expected exact sustain after exponential decay, got %v", got)
	}
	e.Release(&p)
	prev = 2
	for !e.IsCompleted() {
		v := e.Next(testDeltaMs, &p)
		if v > prev || v < 0 {
			t.Fatalf("release not monotone: %v -> %v", prev, v)
		}
		prev = v
	}
}

func TestCurveShapeEndpoints(t *testing.T) {
	for _, c := range []Curve{CurveLinear, CurveExponential} {
		if c.shape(0) != 0 || c.shape(1) != 1 {
			t.Fatalf("%s: expected endpoints 0 and 1", c)
		}
		if c.shape(float32(math.NaN())) != 0 || c.shape(2) != 1 {
			t.Fatalf("%s: expected out-of-range progress to clamp", c)
		}
	}
	if CurveExponential.shape(0.2) <= CurveLinear.shape(0.2) {
		t.Fatalf("expected exponential curve to lead linear early on")
	}
}

func TestEnvelopeParamsSanitize(t *testing.T) {
	nan := float32(math.NaN())
	p := EnvelopeParams{AttackMs: -1, HoldMs: nan, DecayMs: float32(math.Inf(1)), Sustain: 3, ReleaseMs: 12, DecayCurve: 9}
	got := p.Sanitize()
	if got.AttackMs != 0 || got.HoldMs != 0 || got.DecayMs != math.MaxFloat32 {
		t.Fatalf("unexpected durations: %+v", got)
	}
	if got.Sustain != 1 || got.ReleaseMs != 12 || got.DecayCurve != CurveLinear {
		t.Fatalf("unexpected sanitized params: %+v", got)
	}
}
