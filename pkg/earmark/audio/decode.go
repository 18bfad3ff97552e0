package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrDecodeFailed marks any failure to turn an input file into PCM samples.
var ErrDecodeFailed = errors.New("audio decode failed")

// ReadWavAsFloat64 reads a PCM WAV file and returns mono samples normalized
// to [-1,1] along with the sample rate. Multi-channel input is averaged.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer f.Close()

	return DecodeWAV(f)
}

// DecodeWAV decodes a WAV stream into mono normalized samples.
func DecodeWAV(r io.ReadSeeker) ([]float64, int, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not a valid WAV file", ErrDecodeFailed)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading PCM data: %v", ErrDecodeFailed, err)
	}
	if buf == nil || buf.Format == nil {
		return nil, 0, fmt.Errorf("%w: missing format chunk", ErrDecodeFailed)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, 0, fmt.Errorf("%w: unsupported bit depth %d", ErrDecodeFailed, bitDepth)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("%w: invalid channel count %d", ErrDecodeFailed, channels)
	}

	return downmix(buf.Data, channels, bitDepth), buf.Format.SampleRate, nil
}

// downmix averages interleaved integer PCM into one normalized channel.
// 8-bit WAV is unsigned and is recentred around 128 first.
func downmix(data []int, channels, bitDepth int) []float64 {
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	bias := 0.0
	if bitDepth == 8 {
		bias = 128
	}
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i*channels+c]) - bias
		}
		out[i] = sum / float64(channels) * scale
	}
	return out
}

// WriteWav writes mono samples in [-1,1] as a 16-bit PCM WAV file.
func WriteWav(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
