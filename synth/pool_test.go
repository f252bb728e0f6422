package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/dsp"
)

func newTestPool(capacity int) *VoicePool {
	return NewVoicePool(capacity, VoiceOptions{Waveform: dsp.WaveSine, VelocityRamp: DefaultVelocityRamp()})
}

func TestMIDINoteToFreq(t *testing.T) {
	tests := []struct {
		note uint8
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.625565},
		{0, 8.175799},
	}
	for _, tt := range tests {
		got := MIDINoteToFreq(tt.note)
		if math.Abs(float64(got)-tt.want) > tt.want*1e-5 {
			t.Fatalf("note %d: got=%f want=%f", tt.note, got, tt.want)
		}
	}
}

func TestPoolCapacityIsClamped(t *testing.T) {
	if c := newTestPool(0).Capacity(); c != 1 {
		t.Fatalf("expected capacity clamp to 1, got %d", c)
	}
	if c := newTestPool(1000).Capacity(); c != MaxVoices {
		t.Fatalf("expected capacity clamp to %d, got %d", MaxVoices, c)
	}
}

func TestPoolIgnoresDuplicateAndOverflowNoteOns(t *testing.T) {
	p := newTestPool(2)
	env := DefaultEnvelopeParams()

	if !p.NoteOn(60, 1, testRate, &env) {
		t.Fatalf("expected first note-on to allocate")
	}
	v, _ := p.Lookup(60)
	v.Next(testRate, testDeltaMs, &env)
	phase := v.Phase()

	if p.NoteOn(60, 0.5, testRate, &env) {
		t.Fatalf("expected duplicate note-on to be ignored")
	}
	if p.Len() != 1 {
		t.Fatalf("expected one voice, got %d", p.Len())
	}
	if v.Phase() != phase || v.GainTarget() != 1 {
		t.Fatalf("expected duplicate note-on to leave the voice untouched")
	}

	if !p.NoteOn(64, 1, testRate, &env) {
		t.Fatalf("expected second note to allocate")
	}
	if p.NoteOn(67, 1, testRate, &env) {
		t.Fatalf("expected full pool to refuse")
	}
	if p.Dropped() != 1 || p.Len() != 2 {
		t.Fatalf("unexpected pool state: len=%d dropped=%d", p.Len(), p.Dropped())
	}
	if _, ok := p.Lookup(67); ok {
		t.Fatalf("expected refused note to be absent")
	}
}

func TestPoolReclaimsOnlyCompletedVoices(t *testing.T) {
	p := newTestPool(4)
	env := DefaultEnvelopeParams()
	env.ReleaseMs = 1

	p.NoteOn(60, 1, testRate, &env)
	p.NoteOn(62, 1, testRate, &env)
	for i := 0; i < 64; i++ {
		p.AdvanceAndSum(testRate, &env)
	}
	p.NoteOff(60, &env)
	if n := p.ReclaimCompleted(); n != 0 {
		t.Fatalf("expected releasing voice to stay, reclaimed %d", n)
	}

	for i := 0; i < 100; i++ {
		p.AdvanceAndSum(testRate, &env)
	}
	v, ok := p.Lookup(60)
	if !ok || !v.IsCompleted() {
		t.Fatalf("expected released voice to complete within the release time")
	}
	if p.Active() != 1 || p.Len() != 2 {
		t.Fatalf("expected 1 active of 2 occupied: active=%d len=%d", p.Active(), p.Len())
	}
	if n := p.ReclaimCompleted(); n != 1 {
		t.Fatalf("expected one reclaimed voice, got %d", n)
	}
	if _, ok := p.Lookup(60); ok {
		t.Fatalf("expected reclaimed note to be unmapped")
	}
	if _, ok := p.Lookup(62); !ok || p.Len() != 1 {
		t.Fatalf("expected held note to survive reclaim")
	}
}

func TestPoolRecyclesCompletedVoiceForSameNote(t *testing.T) {
	p := newTestPool(1)
	env := DefaultEnvelopeParams()
	env.ReleaseMs = 0

	p.NoteOn(60, 1, testRate, &env)
	p.NoteOff(60, &env)
	if v, _ := p.Lookup(60); !v.IsCompleted() {
		t.Fatalf("expected zero release to complete at once")
	}
	if !p.NoteOn(60, 0.7, testRate, &env) {
		t.Fatalf("expected completed slot to be reused before reclaim")
	}
	v, _ := p.Lookup(60)
	if v.IsCompleted() || v.GainTarget() != 0.7 || p.Len() != 1 {
		t.Fatalf("expected a fresh voice in the recycled slot")
	}
}

func TestVelocityRampReachesTargetExactly(t *testing.T) {
	p := newTestPool(1)
	env := DefaultEnvelopeParams()
	p.NoteOn(69, 0.8, testRate, &env)
	v, _ := p.Lookup(69)
	if v.Gain() != 0 {
		t.Fatalf("expected gain ramp to start at 0, got %v", v.Gain())
	}
	for i := 0; i < 239; i++ {
		p.AdvanceAndSum(testRate, &env)
		if g := v.Gain(); g >= 0.8 {
			t.Fatalf("gain arrived early at %d: %v", i, g)
		}
	}
	p.AdvanceAndSum(testRate, &env)
	if v.Gain() != 0.8 {
		t.Fatalf("expected exact velocity after 5 ms, got %v", v.Gain())
	}
}

func TestPolyPressureRetargetsGain(t *testing.T) {
	p := newTestPool(2)
	env := DefaultEnvelopeParams()
	p.NoteOn(60, 1, testRate, &env)
	for i := 0; i < 480; i++ {
		p.AdvanceAndSum(testRate, &env)
	}
	p.PolyPressure(60, 0.25, testRate)
	p.PolyPressure(99, 0.25, testRate)
	v, _ := p.Lookup(60)
	if v.GainTarget() != 0.25 {
		t.Fatalf("expected pressure to retarget gain, got %v", v.GainTarget())
	}
	for i := 0; i < 240; i++ {
		p.AdvanceAndSum(testRate, &env)
	}
	if v.Gain() != 0.25 {
		t.Fatalf("expected gain to settle on pressure, got %v", v.Gain())
	}
	p.PolyPressure(60, 7, testRate)
	if v.GainTarget() != 1 {
		t.Fatalf("expected pressure clamp to 1, got %v", v.GainTarget())
	}
}

func TestAdvanceAndSumEdgeCases(t *testing.T) {
	p := newTestPool(4)
	env := DefaultEnvelopeParams()
	if got := p.AdvanceAndSum(testRate, &env); got != 0 {
		t.Fatalf("expected empty pool to be silent, got %v", got)
	}
	p.NoteOn(60, 1, testRate, &env)
	if got := p.AdvanceAndSum(0, &env); got != 0 {
		t.Fatalf("expected zero sample rate to be silent, got %v", got)
	}
}

func TestPoolResetAndReleaseAll(t *testing.T) {
	p := newTestPool(8)
	env := DefaultEnvelopeParams()
	for n := uint8(60); n < 64; n++ {
		p.NoteOn(n, 1, testRate, &env)
	}
	p.ReleaseAll(&env)
	for n := uint8(60); n < 64; n++ {
		v, _ := p.Lookup(n)
		if v.Stage() != StageRelease {
			t.Fatalf("note %d: expected release, got %s", n, v.Stage())
		}
	}
	p.Reset()
	if p.Len() != 0 || p.Active() != 0 {
		t.Fatalf("expected empty pool after reset")
	}
	for n := uint8(60); n < 64; n++ {
		if _, ok := p.Lookup(n); ok {
			t.Fatalf("expected note %d unmapped after reset", n)
		}
	}
}

func TestVoiceWithZeroStagesIsFullyOpenFromFirstSample(t *testing.T) {
	env := EnvelopeParams{Sustain: 1}
	v := newVoice(69, 1, testRate, VoiceOptions{Waveform: dsp.WaveSine, VelocityRamp: Ramp{TimeMs: 0}}, &env)
	if v.Frequency() != 440 {
		t.Fatalf("expected 440 Hz, got %v", v.Frequency())
	}
	if v.Stage() != StageSustain {
		t.Fatalf("expected sustain from the start, got %s", v.Stage())
	}
	for i := 0; i < 100; i++ {
		if amp := v.env.Next(testDeltaMs, &env); amp != 1 {
			t.Fatalf("expected envelope 1.0 at sample %d, got %v", i, amp)
		}
	}
}

func TestPoolOverflowDoesNotAllocate(t *testing.T) {
	p := newTestPool(4)
	env := DefaultEnvelopeParams()
	for n := uint8(0); n < 4; n++ {
		p.NoteOn(n, 1, testRate, &env)
	}
	allocs := testing.AllocsPerRun(100, func() {
		if p.NoteOn(100, 1, testRate, &env) {
			t.Fatalf("expected full pool to refuse")
		}
		p.AdvanceAndSum(testRate, &env)
	})
	if allocs != 0 {
		t.Fatalf("expected no allocation when dropping: got=%v", allocs)
	}
}

func TestPoolReusesCompletedSlotForNewNote(t *testing.T) {
	p := newTestPool(1)
	env := DefaultEnvelopeParams()
	env.ReleaseMs = 0

	p.NoteOn(60, 1, testRate, &env)
	p.AdvanceAndSum(testRate, &env)
	p.NoteOff(60, &env)
	if p.Active() != 0 || p.Len() != 1 {
		t.Fatalf("expected one completed, unreclaimed voice: active=%d len=%d", p.Active(), p.Len())
	}
	if !p.NoteOn(64, 1, testRate, &env) {
		t.Fatalf("expected completed voice to give up its slot")
	}
	if _, ok := p.Lookup(64); !ok {
		t.Fatalf("expected note 64 to be allocated")
	}
	if _, ok := p.Lookup(60); ok {
		t.Fatalf("expected completed note 60 to be unmapped")
	}
	if p.Dropped() != 0 || p.Len() != 1 {
		t.Fatalf("unexpected pool state: len=%d dropped=%d", p.Len(), p.Dropped())
	}
}
