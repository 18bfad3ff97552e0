package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/himanishpuri/EarMark/pkg/models"
)

// ErrNotFound is returned when no sound has the requested id.
var ErrNotFound = errors.New("sound not found")

// ErrInvalidEntry is returned by Put for entries that cannot be stored.
var ErrInvalidEntry = errors.New("invalid sound entry")

// MemoryLibrary keeps sounds in a map guarded by a RWMutex. Reads return
// copies so callers never share the map's backing storage.
type MemoryLibrary struct {
	mu     sync.RWMutex
	sounds map[string]models.SoundEntry
}

func NewMemoryLibrary() *MemoryLibrary {
	return &MemoryLibrary{sounds: make(map[string]models.SoundEntry)}
}

func validate(entry models.SoundEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}
	if entry.OwnerID == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidEntry)
	}
	return nil
}

func (m *MemoryLibrary) Get(id string) (*models.SoundEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &entry, nil
}

// Put inserts entry or replaces the entry with the same id.
func (m *MemoryLibrary) Put(entry models.SoundEntry) error {
	if err := validate(entry); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sounds[entry.ID] = entry
	return nil
}

func (m *MemoryLibrary) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sounds[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sounds, id)
	return nil
}

// ListByOwner returns the owner's sounds; an empty owner lists everything.
func (m *MemoryLibrary) ListByOwner(ownerID string) ([]models.SoundEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(ownerID), nil
}

// ScanAll returns a snapshot of every stored sound.
func (m *MemoryLibrary) ScanAll() ([]models.SoundEntry, error) {
	return m.ListByOwner("")
}

// Count returns the number of stored sounds.
func (m *MemoryLibrary) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sounds), nil
}

func (m *MemoryLibrary) Close() error { return nil }

// snapshot must be called with the lock held.
func (m *MemoryLibrary) snapshot(ownerID string) []models.SoundEntry {
	out := make([]models.SoundEntry, 0, len(m.sounds))
	for _, e := range m.sounds {
		if ownerID != "" && e.OwnerID != ownerID {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// sortEntries orders sounds oldest first, ties broken by id.
func sortEntries(entries []models.SoundEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
