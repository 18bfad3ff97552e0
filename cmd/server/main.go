//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/himanishpuri/EarMark/pkg/earmark"
	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
)

var (
	port           int
	dbPath         string
	backend        string
	tempDir        string
	sampleRate     int
	threshold      float64
	estimator      string
	allowedOrigins string
	logRequests    bool
)

func init() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	flag.IntVar(&port, "port", getEnvInt("EARMARK_PORT", 8080), "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("EARMARK_DB_PATH", ""), "Path to SQLite database or JSON library file")
	flag.StringVar(&backend, "backend", getEnvOrDefault("EARMARK_BACKEND", earmark.BackendSQLite), "Library backend: sqlite, json or memory")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("EARMARK_TEMP_DIR", os.TempDir()), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 44100, "Audio sample rate")
	flag.Float64Var(&threshold, "threshold", getEnvFloat("EARMARK_THRESHOLD", fingerprint.DefaultThreshold), "Minimum score accepted as a match")
	flag.StringVar(&estimator, "estimator", "decimated", "Spectral estimator: decimated or fft")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&logRequests, "log-requests", false, "Log every HTTP request")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := earmark.NewService(
		earmark.WithLibraryBackend(backend),
		earmark.WithDBPath(dbPath),
		earmark.WithTempDir(tempDir),
		earmark.WithSampleRate(sampleRate),
		earmark.WithThreshold(threshold),
		earmark.WithEstimator(fingerprint.EstimatorByName(estimator)),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %s", xerrors.Sprint(xerrors.New(err)))
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		Backend:        backend,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		Threshold:      threshold,
		AllowedOrigins: origins,
		LogRequests:    logRequests,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewServer(service, config)
	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("Server failed: %v", err)
		service.Close()
		os.Exit(1)
	}
}
