//go:build !js && !wasm

package earmark

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/himanishpuri/EarMark/pkg/earmark/audio"
	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/earmark/storage"
	"github.com/himanishpuri/EarMark/pkg/logger"
	"github.com/himanishpuri/EarMark/pkg/models"
	"github.com/himanishpuri/EarMark/pkg/utils"
)

// earmarkService is the default implementation of the Service interface.
type earmarkService struct {
	library Library
	log     Logger
	config  *Config
	builder *fingerprint.Builder
	matcher *fingerprint.Matcher
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().With("earmark")
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v outside (0,1]", ErrInvalidInput, cfg.Threshold)
	}

	lib := cfg.Library
	if lib == nil {
		var err error
		lib, err = OpenLibrary(cfg.Backend, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open library: %w", err)
		}
	}

	builder := fingerprint.DefaultBuilder()
	if cfg.Estimator != nil {
		builder = fingerprint.NewBuilder(cfg.Estimator)
	}

	if p, ok := lib.(interface{ Path() string }); ok {
		cfg.Logger.Infof("Using library file %s", p.Path())
	}
	cfg.Logger.Debugf("Library ready (backend=%s estimator=%s threshold=%.3f)",
		cfg.Backend, builder.Estimator.Name(), cfg.Threshold)

	return &earmarkService{
		library: lib,
		log:     cfg.Logger,
		config:  cfg,
		builder: builder,
		matcher: fingerprint.NewMatcher(nil),
	}, nil
}

// OpenLibrary opens the named backend. path is the SQLite database or the
// JSON library file; empty selects the backend's default.
func OpenLibrary(backend, path string) (Library, error) {
	switch strings.ToLower(backend) {
	case BackendSQLite, "":
		var db *storage.DBClient
		var err error
		if path == "" {
			db, err = storage.NewDBClient()
		} else {
			db, err = storage.NewDBClientWithPath(path)
		}
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendJSON:
		lib, err := storage.OpenJSONLibrary(path)
		if err != nil {
			return nil, err
		}
		return lib, nil
	case BackendMemory:
		return storage.NewMemoryLibrary(), nil
	default:
		return nil, fmt.Errorf("%w: unknown library backend %q", ErrInvalidInput, backend)
	}
}

// TeachSound decodes an audio file and stores its fingerprint under name.
func (s *earmarkService) TeachSound(ctx context.Context, audioPath, name, ownerID string) (string, error) {
	s.log.Infof("Teaching sound %q for owner %s from %s", name, ownerID, audioPath)

	samples, sampleRate, err := audio.Load(ctx, audioPath, s.config.TempDir, s.config.SampleRate)
	if err != nil {
		return "", fmt.Errorf("loading audio: %w", err)
	}

	return s.TeachSamples(ctx, samples, sampleRate, name, ownerID)
}

// TeachSamples fingerprints mono samples and stores them under name.
func (s *earmarkService) TeachSamples(ctx context.Context, samples []float64, sampleRate int, name, ownerID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if ownerID == "" {
		return "", fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return "", fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fp := s.builder.Build(samples, sampleRate)
	if len(fp) == 0 {
		return "", fmt.Errorf("%w: %d samples, need at least %d", ErrClipTooShort, len(samples), s.builder.WindowSize)
	}

	entry := models.SoundEntry{
		ID:          utils.GenerateUUID(),
		Name:        name,
		OwnerID:     ownerID,
		Fingerprint: fp,
		SampleRate:  sampleRate,
		DurationMs:  len(samples) * 1000 / sampleRate,
		CreatedAt:   time.Now(),
	}
	if err := s.library.Put(entry); err != nil {
		return "", fmt.Errorf("failed to store sound: %w", err)
	}

	s.log.Infof("Stored sound %s (%q, %d frames)", entry.ID, name, len(fp))
	return entry.ID, nil
}

// Identify decodes an audio file and matches it against the library.
func (s *earmarkService) Identify(ctx context.Context, audioPath, ownerID string) (*models.IdentifyResult, error) {
	s.log.Infof("Identifying audio: %s", audioPath)

	samples, sampleRate, err := audio.Load(ctx, audioPath, s.config.TempDir, s.config.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("loading audio: %w", err)
	}

	return s.IdentifySamples(ctx, samples, sampleRate, ownerID)
}

func (s *earmarkService) IdentifySamples(ctx context.Context, samples []float64, sampleRate int, ownerID string) (*models.IdentifyResult, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidInput, sampleRate)
	}
	fp := s.builder.Build(samples, sampleRate)
	return s.IdentifyFingerprint(ctx, fp, ownerID)
}

// IdentifyFingerprint matches a precomputed fingerprint. An empty
// fingerprint scores 0 against everything.
func (s *earmarkService) IdentifyFingerprint(ctx context.Context, fp fingerprint.Fingerprint, ownerID string) (*models.IdentifyResult, error) {
	entries, err := s.library.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan library: %w", err)
	}

	names := make(map[string]string, len(entries))
	candidates := make([]fingerprint.Candidate, len(entries))
	for i, e := range entries {
		names[e.ID] = e.Name
		candidates[i] = e.Candidate()
	}

	match, err := s.matcher.Match(ctx, fp, candidates, s.config.Threshold, ownerID)
	if err != nil {
		return nil, err
	}

	result := &models.IdentifyResult{
		Matched:    match.Matched(),
		SoundID:    match.BestID,
		Name:       names[match.BestID],
		BestScore:  match.BestScore,
		BestOffset: match.BestOffset,
		Threshold:  s.config.Threshold,
		FrameCount: len(fp),
		Ranked:     make([]models.RankedScore, len(match.Ranked)),
	}
	for i, r := range match.Ranked {
		result.Ranked[i] = models.RankedScore{
			SoundID: r.ID,
			Name:    names[r.ID],
			OwnerID: r.OwnerID,
			Score:   r.Score,
			Offset:  r.Offset,
		}
	}

	if result.Matched {
		s.log.Infof("Matched %q (%s) with score %.4f at offset %d", result.Name, result.SoundID, result.BestScore, result.BestOffset)
	} else {
		s.log.Infof("No match among %d sounds (best score %.4f)", len(candidates), result.BestScore)
	}
	return result, nil
}

func (s *earmarkService) GetSound(id string) (*models.SoundEntry, error) {
	return s.library.Get(id)
}

// ListSounds returns the owner's sounds, or every sound when ownerID is empty.
func (s *earmarkService) ListSounds(ownerID string) ([]models.SoundEntry, error) {
	return s.library.ListByOwner(ownerID)
}

// CountSounds reports the library size. Libraries implementing Counter are
// asked directly; others are scanned.
func (s *earmarkService) CountSounds() (int, error) {
	if c, ok := s.library.(Counter); ok {
		return c.Count()
	}
	all, err := s.library.ScanAll()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

func (s *earmarkService) DeleteSound(id string) error {
	if err := s.library.Delete(id); err != nil {
		return err
	}
	s.log.Infof("Deleted sound %s", id)
	return nil
}

// Close releases all resources held by the service.
func (s *earmarkService) Close() error {
	return s.library.Close()
}
