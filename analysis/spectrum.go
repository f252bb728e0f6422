package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/pkg/errors"
)

const (
	minFFTSize = 256
	maxFFTSize = 1 << 16
)

// DominantFrequency returns the frequency of the strongest spectral peak of
// x, refined by parabolic interpolation over the log magnitudes around the
// peak bin. It analyses the longest power-of-two prefix of x up to 65536
// samples under a Hann window.
func DominantFrequency(x []float64, sampleRate int) (float64, error) {
	if sampleRate <= 0 {
		return 0, errors.Errorf("invalid sample rate %d", sampleRate)
	}
	n := minFFTSize
	if len(x) < n {
		return 0, errors.Errorf("need at least %d samples, got %d", minFFTSize, len(x))
	}
	for n*2 <= len(x) && n*2 <= maxFFTSize {
		n *= 2
	}

	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return 0, errors.Wrap(err, "fft plan")
	}
	buf := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = x[i] * w
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, buf)

	best := 0
	bestMag := 0.0
	for k := 1; k < n/2; k++ {
		if m := cmplx.Abs(spec[k]); m > bestMag {
			bestMag = m
			best = k
		}
	}
	if best == 0 {
		return 0, errors.New("no spectral peak")
	}

	a := LinToDB(cmplx.Abs(spec[best-1]))
	b := LinToDB(bestMag)
	c := LinToDB(cmplx.Abs(spec[best+1]))
	delta := 0.0
	if den := a - 2*b + c; den < 0 {
		delta = 0.5 * (a - c) / den
	}
	return (float64(best) + delta) * float64(sampleRate) / float64(n), nil
}
