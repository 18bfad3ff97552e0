package fingerprint

import "time"

// Fingerprint is the ordered sequence of per-window descriptors of a clip.
type Fingerprint []Features

// Builder turns PCM samples into fingerprints.
type Builder struct {
	WindowSize int
	HopSize    int
	Estimator  SpectralEstimator
}

// DefaultBuilder returns the builder that produces library-compatible
// fingerprints.
func DefaultBuilder() *Builder {
	return &Builder{
		WindowSize: WindowSize,
		HopSize:    HopSize,
		Estimator:  DecimatedDFT{},
	}
}

// NewBuilder returns a default builder using the given estimator.
func NewBuilder(est SpectralEstimator) *Builder {
	b := DefaultBuilder()
	if est != nil {
		b.Estimator = est
	}
	return b
}

// BuildFingerprint fingerprints samples with the default builder.
func BuildFingerprint(samples []float64, sampleRate int) Fingerprint {
	return DefaultBuilder().Build(samples, sampleRate)
}

// Build fingerprints mono samples in [-1,1]. Input shorter than one window
// yields an empty, non-nil fingerprint.
func (b *Builder) Build(samples []float64, sampleRate int) Fingerprint {
	if b.WindowSize <= 0 || b.HopSize <= 0 {
		return Fingerprint{}
	}
	windows := taperedWindows(samples, b.WindowSize, b.HopSize, Hann(b.WindowSize))

	fp := make(Fingerprint, 0, len(windows))
	var prev []float64
	for _, w := range windows {
		spectrum := b.Estimator.Estimate(w)
		fp = append(fp, ExtractFeatures(w, spectrum, prev, sampleRate))
		prev = spectrum
	}
	return fp
}

// Spectra returns the magnitude spectrum of every analysis window.
func (b *Builder) Spectra(samples []float64) [][]float64 {
	if b.WindowSize <= 0 || b.HopSize <= 0 {
		return nil
	}
	windows := taperedWindows(samples, b.WindowSize, b.HopSize, Hann(b.WindowSize))
	out := make([][]float64, len(windows))
	for i, w := range windows {
		out[i] = b.Estimator.Estimate(w)
	}
	return out
}

// FrameDuration is the time between consecutive fingerprint frames.
func (b *Builder) FrameDuration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.HopSize) / float64(sampleRate) * float64(time.Second))
}
