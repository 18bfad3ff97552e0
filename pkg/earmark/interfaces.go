package earmark

import (
	"context"

	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/models"
)

type Service interface {
	TeachSound(ctx context.Context, audioPath, name, ownerID string) (string, error)
	TeachSamples(ctx context.Context, samples []float64, sampleRate int, name, ownerID string) (string, error)
	Identify(ctx context.Context, audioPath, ownerID string) (*models.IdentifyResult, error)
	IdentifySamples(ctx context.Context, samples []float64, sampleRate int, ownerID string) (*models.IdentifyResult, error)
	IdentifyFingerprint(ctx context.Context, fp fingerprint.Fingerprint, ownerID string) (*models.IdentifyResult, error)
	GetSound(id string) (*models.SoundEntry, error)
	ListSounds(ownerID string) ([]models.SoundEntry, error)
	DeleteSound(id string) error
	CountSounds() (int, error)
	Close() error
}

// Library stores taught sounds. Implementations must be safe for concurrent
// use; ScanAll and ListByOwner return snapshots.
type Library interface {
	Get(id string) (*models.SoundEntry, error)
	Put(entry models.SoundEntry) error
	Delete(id string) error
	ListByOwner(ownerID string) ([]models.SoundEntry, error)
	ScanAll() ([]models.SoundEntry, error)
	Close() error
}

// Counter is implemented by libraries that can count entries without
// loading fingerprints.
type Counter interface {
	Count() (int, error)
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
