package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/models"
	"github.com/himanishpuri/EarMark/pkg/utils"
)

const DefaultJSONFile = "earmark-library.json"

// jsonRecord is the on-disk shape of one sound. The file is an object keyed
// by sound id.
type jsonRecord struct {
	Name        string                  `json:"name"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	OwnerID     string                  `json:"ownerId"`
	Timestamp   int64                   `json:"timestamp"` // unix milliseconds
	SampleRate  int                     `json:"sampleRate,omitempty"`
	DurationMs  int                     `json:"durationMs,omitempty"`
}

// JSONLibrary is a MemoryLibrary persisted to a single JSON file. Every
// mutation rewrites the file atomically while holding the write lock.
type JSONLibrary struct {
	*MemoryLibrary
	path string
}

// OpenJSONLibrary loads path, treating a missing or empty file as an empty
// library.
func OpenJSONLibrary(path string) (*JSONLibrary, error) {
	if path == "" {
		path = DefaultJSONFile
	}

	lib := &JSONLibrary{MemoryLibrary: NewMemoryLibrary(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("reading library file: %w", err)
	}
	if len(data) == 0 {
		return lib, nil
	}

	var records map[string]jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing library file %s: %w", path, err)
	}

	for id, r := range records {
		lib.sounds[id] = models.SoundEntry{
			ID:          id,
			Name:        r.Name,
			OwnerID:     r.OwnerID,
			Fingerprint: r.Fingerprint,
			SampleRate:  r.SampleRate,
			DurationMs:  r.DurationMs,
			CreatedAt:   time.UnixMilli(r.Timestamp),
		}
	}
	return lib, nil
}

// Path returns the backing file.
func (j *JSONLibrary) Path() string { return j.path }

func (j *JSONLibrary) Put(entry models.SoundEntry) error {
	if err := validate(entry); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	prev, existed := j.sounds[entry.ID]
	j.sounds[entry.ID] = entry
	if err := j.flush(); err != nil {
		if existed {
			j.sounds[entry.ID] = prev
		} else {
			delete(j.sounds, entry.ID)
		}
		return err
	}
	return nil
}

func (j *JSONLibrary) Delete(id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	prev, ok := j.sounds[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(j.sounds, id)
	if err := j.flush(); err != nil {
		j.sounds[id] = prev
		return err
	}
	return nil
}

// flush must be called with the write lock held.
func (j *JSONLibrary) flush() error {
	records := make(map[string]jsonRecord, len(j.sounds))
	for id, e := range j.sounds {
		records[id] = jsonRecord{
			Name:        e.Name,
			Fingerprint: e.Fingerprint,
			OwnerID:     e.OwnerID,
			Timestamp:   e.CreatedAt.UnixMilli(),
			SampleRate:  e.SampleRate,
			DurationMs:  e.DurationMs,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling library: %w", err)
	}
	if err := utils.WriteFileAtomic(j.path, data); err != nil {
		return fmt.Errorf("writing library file: %w", err)
	}
	return nil
}
