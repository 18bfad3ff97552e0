//go:build !js && !wasm

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/himanishpuri/EarMark/pkg/earmark"
	"github.com/himanishpuri/EarMark/pkg/earmark/audio"
	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/logger"
	"github.com/himanishpuri/EarMark/pkg/models"
	"github.com/joho/godotenv"
)

// Global flags
var (
	dbPath     string
	backend    string
	tempDir    string
	sampleRate int
	threshold  float64
)

func init() {
	_ = godotenv.Load()

	// Global flags that can be used with any command
	flag.StringVar(&dbPath, "db", getEnvOrDefault("EARMARK_DB_PATH", ""), "Path to the SQLite database or JSON library file")
	flag.StringVar(&backend, "backend", getEnvOrDefault("EARMARK_BACKEND", earmark.BackendSQLite), "Library backend: sqlite, json or memory")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("EARMARK_TEMP_DIR", os.TempDir()), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", audio.DefaultSampleRate, "Audio sample rate for processing")
	flag.Float64Var(&threshold, "threshold", getEnvFloat("EARMARK_THRESHOLD", fingerprint.DefaultThreshold), "Minimum score accepted as a match")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

// createService creates a new EarMark service with configured options
func createService() (earmark.Service, error) {
	return earmark.NewService(
		earmark.WithLibraryBackend(backend),
		earmark.WithDBPath(dbPath),
		earmark.WithTempDir(tempDir),
		earmark.WithSampleRate(sampleRate),
		earmark.WithThreshold(threshold),
	)
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	log := logger.GetLogger()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, rest := args[0], args[1:]
	log.Debugf("Executing command: %s", command)

	var err error
	switch command {
	case "teach":
		err = handleTeach(rest, os.Stdout)
	case "identify":
		err = handleIdentify(rest, os.Stdout)
	case "list":
		err = handleList(rest, os.Stdout)
	case "delete":
		err = handleDelete(rest, os.Stdout)
	case "inspect":
		err = handleInspect(rest, os.Stdout)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("\n❌ %v\n", err)
		log.Errorf("%s failed: %v", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: earmark [global flags] <command> [arguments]

Commands:
  teach <audio_file> --name <name> --owner <id>   Teach a reference sound
  identify <audio_file> [--owner <id>]            Identify a recorded clip
  list [--owner <id>]                             List taught sounds
  delete <sound_id>                               Delete a taught sound
  inspect <wav_file> [--frames N]                 Print per-frame features

Global flags:`)
	flag.PrintDefaults()
}

// parseWithPath parses fs and returns the single positional argument, which
// may appear before, between or after the flags.
func parseWithPath(fs *flag.FlagSet, args []string) (string, error) {
	var path string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		path, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return "", err
		}
	}
	if fs.NArg() > 0 {
		return "", fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return path, nil
}

func handleTeach(args []string, out io.Writer) error {
	teachCmd := flag.NewFlagSet("teach", flag.ContinueOnError)
	name := teachCmd.String("name", "", "Sound name (required)")
	owner := teachCmd.String("owner", "", "Owner id (required)")
	audioPath, err := parseWithPath(teachCmd, args)
	if err != nil {
		return err
	}
	if audioPath == "" || *name == "" || *owner == "" {
		return errors.New("usage: earmark teach <audio_file> --name <name> --owner <id>")
	}

	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	fmt.Fprintln(out, "🎵 Processing audio file...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	id, err := svc.TeachSound(ctx, audioPath, *name, *owner)
	if err != nil {
		return fmt.Errorf("failed to teach sound: %w", err)
	}

	fmt.Fprintln(out, "\n✅ Sound taught!")
	fmt.Fprintf(out, "   ID:    %s\n", id)
	fmt.Fprintf(out, "   Name:  %s\n", *name)
	fmt.Fprintf(out, "   Owner: %s\n", *owner)
	return nil
}

func handleIdentify(args []string, out io.Writer) error {
	identifyCmd := flag.NewFlagSet("identify", flag.ContinueOnError)
	owner := identifyCmd.String("owner", "", "Only match this owner's sounds")
	top := identifyCmd.Int("top", 5, "Number of ranked scores to print")
	audioPath, err := parseWithPath(identifyCmd, args)
	if err != nil {
		return err
	}
	if audioPath == "" {
		return errors.New("usage: earmark identify <audio_file> [--owner <id>]")
	}

	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	fmt.Fprintln(out, "🔍 Identifying clip...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := svc.Identify(ctx, audioPath, *owner)
	if err != nil {
		return fmt.Errorf("failed to identify clip: %w", err)
	}

	printIdentifyResult(out, result, *top)
	return nil
}

func printIdentifyResult(out io.Writer, result *models.IdentifyResult, top int) {
	if result.Matched {
		fmt.Fprintf(out, "\n✅ Match: %s (%s)\n", result.Name, result.SoundID)
		fmt.Fprintf(out, "   Score: %.4f (threshold %.2f)\n", result.BestScore, result.Threshold)
	} else {
		fmt.Fprintln(out, "\n🤷 No match")
		fmt.Fprintf(out, "   Best score: %.4f (threshold %.2f)\n", result.BestScore, result.Threshold)
	}

	if len(result.Ranked) == 0 || top <= 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "\n   RANK\tSCORE\tOFFSET\tNAME\tID")
	for i, r := range result.Ranked {
		if i >= top {
			break
		}
		fmt.Fprintf(tw, "   %d\t%.4f\t%d\t%s\t%s\n", i+1, r.Score, r.Offset, r.Name, r.SoundID)
	}
	tw.Flush()
}

func handleList(args []string, out io.Writer) error {
	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	owner := listCmd.String("owner", "", "Only list this owner's sounds")
	if err := listCmd.Parse(args); err != nil {
		return err
	}

	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	sounds, err := svc.ListSounds(*owner)
	if err != nil {
		return fmt.Errorf("failed to list sounds: %w", err)
	}

	if len(sounds) == 0 {
		fmt.Fprintln(out, "📭 No sounds taught yet")
		return nil
	}

	fmt.Fprintf(out, "📚 %d sound(s)\n\n", len(sounds))
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tFRAMES\tDURATION\tTAUGHT")
	for _, s := range sounds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.Name, s.OwnerID, len(s.Fingerprint),
			(time.Duration(s.DurationMs) * time.Millisecond).String(),
			s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func handleDelete(args []string, out io.Writer) error {
	if len(args) < 1 || args[0] == "" {
		return errors.New("usage: earmark delete <sound_id>")
	}
	id := args[0]

	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	sound, err := svc.GetSound(id)
	if err != nil {
		return fmt.Errorf("sound %s not found: %w", id, err)
	}
	if err := svc.DeleteSound(id); err != nil {
		return fmt.Errorf("failed to delete sound: %w", err)
	}

	fmt.Fprintf(out, "🗑️  Deleted %q (%s)\n", sound.Name, id)
	return nil
}

// handleInspect prints the feature vectors of a WAV file without touching the
// library.
func handleInspect(args []string, out io.Writer) error {
	inspectCmd := flag.NewFlagSet("inspect", flag.ContinueOnError)
	frames := inspectCmd.Int("frames", 10, "Number of frames to print")
	estimator := inspectCmd.String("estimator", "decimated", "Spectral estimator: decimated or fft")
	wavPath, err := parseWithPath(inspectCmd, args)
	if err != nil {
		return err
	}
	if wavPath == "" {
		return errors.New("usage: earmark inspect <wav_file> [--frames N]")
	}

	samples, rate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return err
	}

	builder := fingerprint.NewBuilder(fingerprint.EstimatorByName(*estimator))
	fp := builder.Build(samples, rate)
	spectra := builder.Spectra(samples)
	fmt.Fprintf(out, "%s: %d samples at %d Hz, %d frames (%s per hop)\n\n",
		wavPath, len(samples), rate, len(fp), builder.FrameDuration(rate))

	peaks := make([]float64, len(spectra))
	for i, s := range spectra {
		peaks[i] = peakFrequency(s, rate)
	}
	return writeFeatureTable(out, fp, peaks, *frames)
}

// peakFrequency returns the frequency of the strongest bin, using the same
// bin-to-Hz mapping as the spectral features.
func peakFrequency(spectrum []float64, sampleRate int) float64 {
	if len(spectrum) == 0 {
		return 0
	}
	peak := 0
	for k, v := range spectrum {
		if v > spectrum[peak] {
			peak = k
		}
	}
	nyquist := float64(sampleRate) / 2
	return float64(peak) / float64(len(spectrum)) * nyquist
}

func writeFeatureTable(out io.Writer, fp fingerprint.Fingerprint, peaks []float64, limit int) error {
	tw := tabwriter.NewWriter(out, 0, 2, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "#\t")
	for _, name := range fingerprint.FeatureNames {
		fmt.Fprintf(tw, "%s\t", name)
	}
	fmt.Fprint(tw, "peakHz\t")
	fmt.Fprintln(tw)

	for i, f := range fp {
		if i >= limit {
			break
		}
		fmt.Fprintf(tw, "%d\t", i)
		for _, v := range f.Values() {
			fmt.Fprintf(tw, "%.4g\t", v)
		}
		if i < len(peaks) {
			fmt.Fprintf(tw, "%.0f\t", peaks[i])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
