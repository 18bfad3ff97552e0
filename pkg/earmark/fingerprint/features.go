package fingerprint

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FeatureCount is the number of descriptors per window.
const FeatureCount = 12

// rolloffFraction is the share of spectral energy below the rolloff frequency.
const rolloffFraction = 0.85

// Features describes a single analysis window. Field names and their JSON
// tags are shared with every stored library, so they must not change.
type Features struct {
	Energy           float64 `json:"energy"`
	ZCR              float64 `json:"zcr"`
	SpectralCentroid float64 `json:"spectralCentroid"`
	SpectralFlux     float64 `json:"spectralFlux"`
	SpectralRolloff  float64 `json:"spectralRolloff"`
	SubBass          float64 `json:"subBass"`
	Bass             float64 `json:"bass"`
	LowMid           float64 `json:"lowMid"`
	Mid              float64 `json:"mid"`
	HighMid          float64 `json:"highMid"`
	Presence         float64 `json:"presence"`
	Brilliance       float64 `json:"brilliance"`
}

// FeatureNames lists the descriptors in Values order.
var FeatureNames = [FeatureCount]string{
	"energy", "zcr", "spectralCentroid", "spectralFlux", "spectralRolloff",
	"subBass", "bass", "lowMid", "mid", "highMid", "presence", "brilliance",
}

// Values returns the descriptors in FeatureNames order.
func (f Features) Values() [FeatureCount]float64 {
	return [FeatureCount]float64{
		f.Energy, f.ZCR, f.SpectralCentroid, f.SpectralFlux, f.SpectralRolloff,
		f.SubBass, f.Bass, f.LowMid, f.Mid, f.HighMid, f.Presence, f.Brilliance,
	}
}

// Band is a frequency range in Hz.
type Band struct {
	Name string
	Low  float64
	High float64
}

// Bands are the seven energy bands, in Features field order.
var Bands = [7]Band{
	{"subBass", 20, 60},
	{"bass", 60, 250},
	{"lowMid", 250, 500},
	{"mid", 500, 2000},
	{"highMid", 2000, 4000},
	{"presence", 4000, 6000},
	{"brilliance", 6000, 20000},
}

// ExtractFeatures computes the descriptors of one tapered window. prev is the
// spectrum of the preceding window, or nil for the first window.
func ExtractFeatures(window, spectrum, prev []float64, sampleRate int) Features {
	nyquist := float64(sampleRate) / 2

	var bands [7]float64
	for i, b := range Bands {
		bands[i] = bandEnergy(spectrum, b.Low, b.High, nyquist)
	}

	return Features{
		Energy:           rms(window),
		ZCR:              zeroCrossingRate(window),
		SpectralCentroid: spectralCentroid(spectrum, nyquist),
		SpectralFlux:     spectralFlux(spectrum, prev),
		SpectralRolloff:  spectralRolloff(spectrum, nyquist),
		SubBass:          bands[0],
		Bass:             bands[1],
		LowMid:           bands[2],
		Mid:              bands[3],
		HighMid:          bands[4],
		Presence:         bands[5],
		Brilliance:       bands[6],
	}
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

func zeroCrossingRate(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(x); i++ {
		if (x[i] >= 0) != (x[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(x))
}

// binFrequency maps bin k to Hz by spreading the bins evenly up to nyquist.
func binFrequency(k, bins int, nyquist float64) float64 {
	return float64(k) / float64(bins) * nyquist
}

func spectralCentroid(spectrum []float64, nyquist float64) float64 {
	total := floats.Sum(spectrum)
	if total == 0 {
		return 0
	}
	var weighted float64
	for k, s := range spectrum {
		weighted += binFrequency(k, len(spectrum), nyquist) * s
	}
	return weighted / total
}

func spectralFlux(spectrum, prev []float64) float64 {
	if prev == nil {
		return 0
	}
	n := min(len(spectrum), len(prev))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := spectrum[i] - prev[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func spectralRolloff(spectrum []float64, nyquist float64) float64 {
	threshold := rolloffFraction * floats.Dot(spectrum, spectrum)
	var cumulative float64
	for k, s := range spectrum {
		cumulative += s * s
		if cumulative >= threshold {
			return binFrequency(k, len(spectrum), nyquist)
		}
	}
	return nyquist
}

func bandEnergy(spectrum []float64, low, high, nyquist float64) float64 {
	bins := len(spectrum)
	if bins == 0 || nyquist <= 0 {
		return 0
	}
	start := max(int(math.Round(low/nyquist*float64(bins))), 0)
	end := min(int(math.Round(high/nyquist*float64(bins))), bins-1)
	if end < start {
		return 0
	}
	count := end - start + 1
	sumSq := floats.Dot(spectrum[start:end+1], spectrum[start:end+1])
	// The divisor is count+1, matching stored fingerprints.
	return math.Sqrt(sumSq / float64(count+1))
}
