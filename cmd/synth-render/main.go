package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/dsp"
	"github.com/cwbudde/algo-synth/internal/audioio"
	"github.com/cwbudde/algo-synth/midifile"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
)

func main() {
	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (0-127)")
	duration := flag.Float64("duration", 2.0, "Duration in seconds (with -midi, 0 renders to the last event plus -tail)")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds (single-note mode)")
	tail := flag.Float64("tail", 1.0, "Seconds rendered after the last MIDI event when -duration is 0")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when block RMS falls below this dBFS after the last event (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 0, "Render sample rate in Hz (0 = preset value)")
	outputRate := flag.Int("output-rate", 0, "Resample the result to this rate before writing (0 = render rate)")
	blockSize := flag.Int("block-size", 128, "Host block size in frames")
	channels := flag.Int("channels", 2, "Output channel count")
	waveform := flag.String("waveform", "", "Waveform override: sine, saw, square or triangle")
	maxVoices := flag.Int("max-voices", 0, "Voice limit override (0 = preset value)")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	midiPath := flag.String("midi", "", "Standard MIDI File to render instead of a single note")
	midiChannel := flag.Int("midi-channel", midifile.AllChannels, "MIDI channel 1-16 to render (0 = all)")
	transpose := flag.Int("transpose", 0, "Transpose MIDI notes by semitones")
	output := flag.String("output", "output.wav", "Output WAV file path")
	report := flag.Bool("analyze", false, "Print an analysis report of the rendered audio as JSON")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		var err error
		p, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *sampleRate > 0 {
		p.Config.SampleRate = float32(*sampleRate)
	}
	if *maxVoices > 0 {
		p.Config.MaxVoices = *maxVoices
	}
	if *waveform != "" {
		w, ok := dsp.ParseWaveform(*waveform)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown waveform %q\n", *waveform)
			os.Exit(1)
		}
		p.Config.Waveform = w
	}
	if *channels < 1 || *blockSize < 1 {
		fmt.Fprintf(os.Stderr, "Error: -channels and -block-size must be >= 1\n")
		os.Exit(1)
	}

	engine := synth.NewEngine(p.Config)
	cfg := engine.Config()
	rate := int(cfg.SampleRate)
	controls := synth.NewSmoothedControls(cfg.SampleRate, p.Controls)

	var seq *midifile.Sequence
	if *midiPath != "" {
		var err error
		seq, err = midifile.Load(*midiPath, midifile.Options{
			SampleRate: float64(rate),
			Channel:    *midiChannel,
			Transpose:  *transpose,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading MIDI file: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Printf("Rendering %s (%d events) at %d Hz, %s, %d voices...\n", *midiPath, seq.Len(), rate, cfg.Waveform, cfg.MaxVoices)
		}
	} else {
		if *note < 0 || *note > 127 {
			fmt.Fprintf(os.Stderr, "Error: note must be in 0..127\n")
			os.Exit(1)
		}
		vel := audioio.Clamp(float64(*velocity), 0, 127) / 127
		seq = singleNote(uint8(*note), float32(vel), int64(float64(rate)*(*releaseAfter)))
		if !*quiet {
			fmt.Printf("Rendering note %d, velocity %d, for %.2f seconds at %d Hz (%s)...\n", *note, *velocity, *duration, rate, cfg.Waveform)
		}
	}

	opts := renderOptions{
		blockSize:  *blockSize,
		channels:   *channels,
		holdBlocks: *decayHoldBlocks,
	}
	if !math.IsInf(*decayDBFS, 1) {
		opts.minFrames = int(float64(rate) * *minDuration)
		opts.maxFrames = int(float64(rate) * *maxDuration)
		opts.threshold = math.Pow(10.0, *decayDBFS/20.0)
	} else {
		total := int(float64(rate) * *duration)
		if *midiPath != "" && *duration <= 0 {
			total = int(seq.EndFrame()) + int(float64(rate)*(*tail))
		}
		if total < 1 {
			total = 1
		}
		opts.minFrames = total
		opts.maxFrames = total
	}

	out := render(engine, seq, controls, opts)
	frames := len(out[0])
	if opts.threshold > 0 && !*quiet {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", frames, float64(frames)/float64(rate), *decayDBFS)
	}
	if d := engine.Pool().Dropped(); d > 0 && !*quiet {
		fmt.Printf("Warning: %d note-ons dropped (voice limit %d)\n", d, cfg.MaxVoices)
	}

	writeRate := rate
	if *outputRate > 0 && *outputRate != rate {
		for c := range out {
			res, err := audioio.ResampleIfNeeded(audioio.ToFloat64(out[c]), rate, *outputRate)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
				os.Exit(1)
			}
			out[c] = audioio.ToFloat32(res)
		}
		writeRate = *outputRate
	}

	if err := audioio.WriteWAV(*output, out, writeRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Printf("Successfully wrote %s (%d frames, %d channels, %d Hz)\n", *output, len(out[0]), len(out), writeRate)
	}

	if *report {
		r := analysis.Analyze(audioio.ToFloat64(out[0]), writeRate)
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
	}
}
