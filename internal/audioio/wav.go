package audioio

import (
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"github.com/pkg/errors"
)

// ReadWAVMono decodes a WAV file and averages its channels.
func ReadWAVMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open wav")
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, errors.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, errors.Wrapf(err, "decode %s", path)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, errors.Errorf("invalid wav buffer: %s", path)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// ResampleIfNeeded converts in from fromRate to toRate. Equal rates return
// the input unchanged.
func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	if fromRate <= 0 || toRate <= 0 {
		return nil, errors.Errorf("invalid resample rates %d -> %d", fromRate, toRate)
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "resampler %d -> %d", fromRate, toRate)
	}
	return r.Process(in), nil
}

// Interleave packs equally long channel buffers frame by frame.
func Interleave(channels [][]float32) ([]float32, error) {
	if len(channels) == 0 {
		return nil, errors.New("no channels")
	}
	frames := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, errors.Errorf("channel %d length %d, want %d", i+1, len(ch), frames)
		}
	}
	n := len(channels)
	data := make([]float32, frames*n)
	for i := 0; i < frames; i++ {
		for c, ch := range channels {
			data[i*n+c] = ch[i]
		}
	}
	return data, nil
}

// WriteWAV writes channels as a 16-bit PCM WAV file, creating parent
// directories as needed.
func WriteWAV(path string, channels [][]float32, sampleRate int) error {
	data, err := Interleave(channels)
	if err != nil {
		return err
	}
	return WriteInterleavedWAV(path, data, len(channels), sampleRate)
}

// WriteInterleavedWAV writes interleaved samples as a 16-bit PCM WAV file.
func WriteInterleavedWAV(path string, samples []float32, numChannels int, sampleRate int) error {
	if numChannels < 1 {
		return errors.Errorf("invalid channel count %d", numChannels)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create wav")
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numChannels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "write wav")
	}
	return errors.Wrap(enc.Close(), "close wav")
}

// RMS returns the root mean square of samples.
func RMS(samples []float32) float64 {
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

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		if v := math.Abs(float64(s)); v > peak {
			peak = v
		}
	}
	return peak
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToFloat32 converts a float64 signal.
func ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// ToFloat64 converts a float32 signal.
func ToFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
