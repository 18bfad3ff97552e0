package earmark

import (
	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
)

// Library backends accepted by WithLibraryBackend.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

type Config struct {
	DBPath     string
	Backend    string
	TempDir    string
	SampleRate int
	Threshold  float64
	Logger     Logger
	Library    Library
	Estimator  fingerprint.SpectralEstimator
}

type Option func(*Config)

// WithDBPath sets the SQLite database or JSON library file.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLibraryBackend(backend string) Option {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithLibrary supplies a ready library; the backend and path are ignored.
func WithLibrary(lib Library) Option {
	return func(c *Config) {
		c.Library = lib
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

// WithSampleRate sets the rate audio files are transcoded to before
// fingerprinting.
func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithThreshold(threshold float64) Option {
	return func(c *Config) {
		c.Threshold = threshold
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithEstimator(est fingerprint.SpectralEstimator) Option {
	return func(c *Config) {
		c.Estimator = est
	}
}

func defaultConfig() *Config {
	return &Config{
		Backend:    BackendSQLite,
		TempDir:    "/tmp",
		SampleRate: 44100,
		Threshold:  fingerprint.DefaultThreshold,
		Logger:     nil,
	}
}
