package fingerprint

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// MaxBins caps the spectrum length regardless of window size.
	MaxBins = 128
	// DecimationStride is the input stride used by DecimatedDFT.
	DecimationStride = 4
)

// SpectralEstimator turns a tapered window into a magnitude spectrum.
type SpectralEstimator interface {
	Estimate(window []float64) []float64
	Name() string
}

// BinCount returns the number of spectrum bins produced for a window of n
// samples.
func BinCount(n int) int {
	if n/2 < MaxBins {
		return n / 2
	}
	return MaxBins
}

// DecimatedDFT is a direct DFT over every fourth input sample, evaluated at
// the first BinCount(N) bins only. Its exact arithmetic is part of the
// stored fingerprint format.
type DecimatedDFT struct{}

func (DecimatedDFT) Name() string { return "decimated" }

func (DecimatedDFT) Estimate(window []float64) []float64 {
	n := len(window)
	bins := BinCount(n)
	if bins == 0 {
		return []float64{}
	}

	norm := float64(n) / DecimationStride
	mag := make([]float64, bins)
	for k := 0; k < bins; k++ {
		var re, im float64
		for i := 0; i < n; i += DecimationStride {
			angle := 2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += window[i] * math.Cos(angle)
			im += -window[i] * math.Sin(angle)
		}
		mag[k] = math.Sqrt(re*re+im*im) / norm
	}
	return mag
}

// FFTEstimator computes a full real FFT and keeps the first BinCount(N)
// magnitudes, normalised by N/2. Fingerprints built with it are not
// comparable with DecimatedDFT fingerprints.
type FFTEstimator struct{}

func (FFTEstimator) Name() string { return "fft" }

func (FFTEstimator) Estimate(window []float64) []float64 {
	n := len(window)
	bins := BinCount(n)
	if bins == 0 {
		return []float64{}
	}

	spectrum := fft.FFTReal(window)
	norm := float64(n) / 2
	mag := make([]float64, bins)
	for k := 0; k < bins; k++ {
		mag[k] = cmplx.Abs(spectrum[k]) / norm
	}
	return mag
}

// EstimatorByName resolves a configured estimator name. Unknown names fall
// back to DecimatedDFT.
func EstimatorByName(name string) SpectralEstimator {
	switch name {
	case "fft":
		return FFTEstimator{}
	default:
		return DecimatedDFT{}
	}
}
