package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorProcessing
	ErrorTooShort
)

var (
	errInvalidArgs = errors.New("invalid arguments")
	errTooShort    = errors.New("audio too short")
)

// fingerprintJSON downmixes interleaved samples, builds the fingerprint and
// encodes it as a JSON array of frames.
func fingerprintJSON(samples []float64, sampleRate, channels int) (string, int, error) {
	if sampleRate <= 0 {
		return "", 0, fmt.Errorf("%w: sample rate %d", errInvalidArgs, sampleRate)
	}
	if channels < 1 || channels > 2 {
		return "", 0, fmt.Errorf("%w: channels must be 1 (mono) or 2 (stereo), got %d", errInvalidArgs, channels)
	}
	if len(samples) == 0 {
		return "", 0, fmt.Errorf("%w: audioArray is empty", errInvalidArgs)
	}

	if channels == 2 {
		samples = stereoToMono(samples)
	}

	fp := fingerprint.BuildFingerprint(samples, sampleRate)
	if len(fp) == 0 {
		return "", 0, fmt.Errorf("%w: need at least %d samples per channel", errTooShort, fingerprint.WindowSize)
	}

	data, err := json.Marshal(fp)
	if err != nil {
		return "", 0, fmt.Errorf("encoding fingerprint: %w", err)
	}
	return string(data), len(fp), nil
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, errInvalidArgs):
		return ErrorInvalidArgs
	case errors.Is(err, errTooShort):
		return ErrorTooShort
	default:
		return ErrorProcessing
	}
}

func stereoToMono(stereo []float64) []float64 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}

	monoLength := len(stereo) / 2
	mono := make([]float64, monoLength)

	for i := 0; i < monoLength; i++ {
		mono[i] = (stereo[i*2] + stereo[i*2+1]) / 2.0
	}

	return mono
}
