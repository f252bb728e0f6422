package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/internal/audioio"
)

func main() {
	inputPath := flag.String("input", "output.wav", "WAV file to analyze")
	sampleRate := flag.Int("sample-rate", 0, "Resample to this rate before analysis (0 = file rate)")
	jsonOut := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	x, sr, err := audioio.ReadWAVMono(*inputPath)
	if err != nil {
		die("failed to read input: %v", err)
	}
	if *sampleRate > 0 {
		x, err = audioio.ResampleIfNeeded(x, sr, *sampleRate)
		if err != nil {
			die("failed to resample input: %v", err)
		}
		sr = *sampleRate
	}

	r := analysis.Analyze(x, sr)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			die("failed to encode report: %v", err)
		}
		return
	}

	fmt.Printf("File: %s\n", *inputPath)
	fmt.Printf("Sample rate: %d Hz, %d frames (%.3fs)\n", r.SampleRate, r.Frames, r.DurationSec)
	if r.Silent {
		fmt.Println("Signal is silent")
		return
	}
	fmt.Printf("Peak: %.4f (%.2f dBFS)\n", r.Peak, r.PeakDBFS)
	fmt.Printf("RMS: %.4f (%.2f dBFS)\n", r.RMS, r.RMSDBFS)
	fmt.Printf("Onset: %.4fs, attack: %.2f ms\n", r.OnsetSec, r.AttackMs)
	fmt.Printf("Decay slope: %.2f dB/s\n", r.DecayDBPerS)
	fmt.Printf("Dominant frequency: %.2f Hz\n", r.DominantHz)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
