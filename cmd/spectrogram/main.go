//go:build !js && !wasm

package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eligwz/spectrogram"
	"github.com/himanishpuri/EarMark/pkg/earmark/audio"
	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/logger"
)

var (
	inputDir  = flag.String("in", "testdata/sounds", "Directory of WAV files")
	outputDir = flag.String("out", "testdata/spectrograms", "Directory for PNG output")
	width     = flag.Int("width", 2048, "Image width in pixels")
	height    = flag.Int("height", 512, "Image height in pixels (frequency bins)")
	logScale  = flag.Bool("log", false, "Use a log10 magnitude scale")
	markers   = flag.Bool("frames", true, "Mark the start of every fingerprint window")
)

func main() {
	flag.Parse()
	log := logger.GetLogger().With("spectrogram")

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outputDir, err)
	}

	rendered := 0
	err := filepath.WalkDir(*inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".wav") {
			return nil
		}

		outputPath := filepath.Join(*outputDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".png")
		if err := render(path, outputPath); err != nil {
			log.Warnf("Skipping %s: %v", path, err)
			return nil
		}
		log.Infof("Saved spectrogram to %s", outputPath)
		rendered++
		return nil
	})
	if err != nil {
		log.Fatalf("Walking %s: %v", *inputDir, err)
	}

	fmt.Printf("Done! %d spectrogram(s) written\n", rendered)
}

// render draws the spectrogram of one WAV file, optionally ticking the
// columns where fingerprint windows start.
func render(wavPath, outputPath string) error {
	samples, sampleRate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples")
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, *width, *height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, magnitude
	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(*height),
		false,
		false,
		true,
		*logScale,
	)

	if *markers {
		markWindows(img, len(samples))
	}

	return spectrogram.SavePng(img, outputPath)
}

func markWindows(img draw.Image, n int) {
	b := fingerprint.DefaultBuilder()
	count := fingerprint.WindowCount(n, b.WindowSize, b.HopSize)
	tick := color.RGBA{R: 0xff, G: 0xcc, A: 0xff}
	bounds := img.Bounds()

	for i := 0; i < count; i++ {
		x := bounds.Min.X + i*b.HopSize*bounds.Dx()/n
		for y := bounds.Max.Y - 8; y < bounds.Max.Y; y++ {
			img.Set(x, y, tick)
		}
	}
}
