package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/EarMark/internal/testaudio"
)

func TestWriteAndReadWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	clip := testaudio.Tone(440, 0.5, 0.5)

	if err := WriteWav(path, clip, testaudio.SampleRate); err != nil {
		t.Fatalf("WriteWav failed: %v", err)
	}

	samples, rate, err := ReadWavAsFloat64(path)
	if err != nil {
		t.Fatalf("ReadWavAsFloat64 failed: %v", err)
	}

	if rate != testaudio.SampleRate {
		t.Errorf("Expected sample rate %d, got %d", testaudio.SampleRate, rate)
	}
	if len(samples) != len(clip) {
		t.Fatalf("Expected %d samples, got %d", len(clip), len(samples))
	}

	for i := range clip {
		if math.Abs(samples[i]-clip[i]) > 1e-3 {
			t.Fatalf("Sample %d: expected %f, got %f", i, clip[i], samples[i])
		}
	}
}

func TestReadWavMissingFile(t *testing.T) {
	_, _, err := ReadWavAsFloat64(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Expected ErrDecodeFailed, got %v", err)
	}
}

func TestDecodeInvalidData(t *testing.T) {
	_, _, err := DecodeWAV(bytes.NewReader([]byte("INVALID HEADER DATA")))
	if !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Expected ErrDecodeFailed, got %v", err)
	}
}

func TestReadWavNotAWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(path, []byte("this is plain text, not audio"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, _, err := ReadWavAsFloat64(path); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Expected ErrDecodeFailed, got %v", err)
	}
}

func TestDownmix(t *testing.T) {
	// Interleaved stereo 16-bit frames.
	data := []int{16384, -16384, 32767, 32767, 0, -32768}

	result := downmix(data, 2, 16)
	expected := []float64{0, 32767.0 / 32768.0, -0.5}

	if len(result) != len(expected) {
		t.Fatalf("Expected %d frames, got %d", len(expected), len(result))
	}
	for i := range expected {
		if math.Abs(result[i]-expected[i]) > 1e-9 {
			t.Errorf("Frame %d: expected %f, got %f", i, expected[i], result[i])
		}
	}
}

func TestDownmixMono(t *testing.T) {
	result := downmix([]int{0, 16384, -32768}, 1, 16)
	expected := []float64{0, 0.5, -1}

	for i := range expected {
		if result[i] != expected[i] {
			t.Errorf("Sample %d: expected %f, got %f", i, expected[i], result[i])
		}
	}
}

func TestDownmixUnsigned8Bit(t *testing.T) {
	result := downmix([]int{128, 192, 0, 255}, 1, 8)
	expected := []float64{0, 0.5, -1, 127.0 / 128.0}

	for i := range expected {
		if math.Abs(result[i]-expected[i]) > 1e-9 {
			t.Errorf("Sample %d: expected %f, got %f", i, expected[i], result[i])
		}
	}
}

// pcm8WAV builds a mono 8-bit PCM WAV whose data chunk is body.
func pcm8WAV(sampleRate int, body []byte) []byte {
	var buf bytes.Buffer
	le32 := func(v int) { buf.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}) }
	le16 := func(v int) { buf.Write([]byte{byte(v), byte(v >> 8)}) }

	buf.WriteString("RIFF")
	le32(36 + len(body))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	le32(16)
	le16(1) // PCM
	le16(1) // mono
	le32(sampleRate)
	le32(sampleRate) // byte rate
	le16(1)          // block align
	le16(8)          // bits per sample
	buf.WriteString("data")
	le32(len(body))
	buf.Write(body)
	return buf.Bytes()
}

func TestDecodeWAV8BitSilence(t *testing.T) {
	body := bytes.Repeat([]byte{128}, 1000)

	samples, rate, err := DecodeWAV(bytes.NewReader(pcm8WAV(8000, body)))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", rate)
	}
	if len(samples) != len(body) {
		t.Fatalf("Expected %d samples, got %d", len(body), len(samples))
	}
	for i, v := range samples {
		if v != 0 {
			t.Fatalf("Expected 8-bit silence to decode to 0, sample %d is %f", i, v)
		}
	}
}

func TestDownmixDropsPartialFrame(t *testing.T) {
	if got := len(downmix([]int{1, 2, 3}, 2, 16)); got != 1 {
		t.Errorf("Expected 1 frame, got %d", got)
	}
}
