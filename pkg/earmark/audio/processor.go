//go:build !js && !wasm

package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/EarMark/pkg/utils"
)

// DefaultSampleRate is the rate clips are transcoded to when none is given.
const DefaultSampleRate = 44100

// transcodeAttempts is the number of times ffmpeg is run before giving up.
const transcodeAttempts = 2

type ConvertWAVConfig struct {
	SampleRate int
	Timeout    time.Duration
}

// runCommand executes an external command and returns its combined output.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ConvertToMonoWAV transcodes any ffmpeg-readable input into a mono 16-bit
// PCM WAV inside outputDir. A failed run is retried once.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, baseName+"-"+utils.GenerateUUID()+".wav")

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	var lastErr error
	for attempt := 1; attempt <= transcodeAttempts; attempt++ {
		lastErr = transcode(ctx, inputPath, tmpPath, cfg)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeFailed, lastErr)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

func transcode(ctx context.Context, inputPath, outputPath string, cfg ConvertWAVConfig) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	out, err := runCommand(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1", // mono
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %v (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Load transcodes inputPath and returns its mono samples and sample rate.
// The intermediate WAV is removed before returning.
func Load(ctx context.Context, inputPath, tempDir string, sampleRate int) ([]float64, int, error) {
	wavPath, err := ConvertToMonoWAV(ctx, inputPath, tempDir, ConvertWAVConfig{SampleRate: sampleRate})
	if err != nil {
		return nil, 0, err
	}
	defer os.Remove(wavPath)

	return ReadWavAsFloat64(wavPath)
}
