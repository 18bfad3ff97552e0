package fingerprint

import "math"

const (
	// WindowSize is the analysis window length in samples.
	WindowSize = 512
	// HopSize is the distance between consecutive window starts. It is larger
	// than WindowSize, so windows do not overlap and most samples are skipped.
	// Stored fingerprints depend on both values.
	HopSize = 2048
)

// Hann returns a symmetric raised-cosine taper of length n.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// WindowCount reports how many full windows fit in n samples.
func WindowCount(n, windowSize, hopSize int) int {
	if windowSize <= 0 || hopSize <= 0 || n < windowSize {
		return 0
	}
	return (n-windowSize)/hopSize + 1
}

// taperedWindows slices samples into tapered analysis windows. The trailing
// partial window is dropped.
func taperedWindows(samples []float64, windowSize, hopSize int, taper []float64) [][]float64 {
	count := WindowCount(len(samples), windowSize, hopSize)
	windows := make([][]float64, 0, count)
	for i := 0; i < count; i++ {
		start := i * hopSize
		frame := make([]float64, windowSize)
		copy(frame, samples[start:start+windowSize])
		for j := range frame {
			frame[j] *= taper[j]
		}
		windows = append(windows, frame)
	}
	return windows
}
