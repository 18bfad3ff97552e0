// Package testaudio generates deterministic synthetic clips for tests.
package testaudio

import (
	"math"
	"math/rand/v2"
)

// SampleRate is the rate used by every generator in this package.
const SampleRate = 44100

func samplesFor(seconds float64) int {
	return int(seconds * SampleRate)
}

// Tone is a constant sine wave.
func Tone(freq, amp, seconds float64) []float64 {
	out := make([]float64, samplesFor(seconds))
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
	}
	return out
}

// Chirp is a linear sweep from f0 to f1 Hz.
func Chirp(f0, f1, amp, seconds float64) []float64 {
	out := make([]float64, samplesFor(seconds))
	k := (f1 - f0) / seconds
	for i := range out {
		t := float64(i) / SampleRate
		out[i] = amp * math.Sin(2*math.Pi*(f0*t+0.5*k*t*t))
	}
	return out
}

// Doorbell is a two-note chime with exponential decay on each note.
func Doorbell(seconds float64) []float64 {
	out := make([]float64, samplesFor(seconds))
	half := len(out) / 2
	for i := range out {
		freq, start := 660.0, 0
		if i >= half {
			freq, start = 550.0, half
		}
		t := float64(i-start) / SampleRate
		env := math.Exp(-2.5 * t)
		out[i] = 0.6 * env * (math.Sin(2*math.Pi*freq*t) + 0.3*math.Sin(2*math.Pi*2*freq*t))
	}
	return out
}

// Bark is a train of short low-passed noise bursts over a 320 Hz growl.
func Bark(seconds float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, samplesFor(seconds))
	burst := samplesFor(0.18)
	period := samplesFor(0.45)

	var lp float64
	for i := range out {
		pos := i % period
		if pos >= burst {
			lp *= 0.9
			out[i] = lp
			continue
		}
		t := float64(pos) / SampleRate
		env := math.Sin(math.Pi * float64(pos) / float64(burst))
		lp = 0.85*lp + 0.15*(rng.Float64()*2-1)
		out[i] = env * (0.7*lp + 0.3*math.Sin(2*math.Pi*320*t))
	}
	return out
}

// Noise is uniform white noise in [-amp, amp].
func Noise(amp float64, n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * (rng.Float64()*2 - 1)
	}
	return out
}

// WithNoise returns a copy of samples with noise added. The same seed gives
// the same noise shape at every amplitude.
func WithNoise(samples []float64, amp float64, seed uint64) []float64 {
	noise := Noise(amp, len(samples), seed)
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = clamp(samples[i] + noise[i])
	}
	return out
}

// Mix sums clips sample-wise, truncated to the shortest.
func Mix(clips ...[]float64) []float64 {
	if len(clips) == 0 {
		return nil
	}
	n := len(clips[0])
	for _, c := range clips[1:] {
		n = min(n, len(c))
	}
	out := make([]float64, n)
	for _, c := range clips {
		for i := 0; i < n; i++ {
			out[i] += c[i]
		}
	}
	for i := range out {
		out[i] = clamp(out[i])
	}
	return out
}

// PCM16 scales samples to signed 16-bit integer values.
func PCM16(samples []float64) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(math.Round(clamp(s) * 32767))
	}
	return out
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
