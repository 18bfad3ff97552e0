package models

import (
	"time"

	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
)

// SoundEntry is a reference sound taught by a user.
type SoundEntry struct {
	ID          string                  // UUID of the sound
	Name        string                  // Display name ("front doorbell")
	OwnerID     string                  // User that taught the sound
	Fingerprint fingerprint.Fingerprint // Frame features in window order
	SampleRate  int                     // Rate the fingerprint was built at
	DurationMs  int                     // Length of the source clip
	CreatedAt   time.Time
}

// Candidate converts the entry into a matcher candidate.
func (e SoundEntry) Candidate() fingerprint.Candidate {
	return fingerprint.Candidate{ID: e.ID, OwnerID: e.OwnerID, Fingerprint: e.Fingerprint}
}

// RankedScore is one library entry scored against a query, with its name
// attached for display.
type RankedScore struct {
	SoundID string  // Library id
	Name    string  // Sound name
	OwnerID string  // Owner of the sound
	Score   float64 // Similarity in [0,1]
	Offset  int     // Frame offset that produced the score
}

// IdentifyResult is the outcome of identifying one clip.
type IdentifyResult struct {
	Matched    bool          // True when BestScore reached the threshold
	SoundID    string        // Id of the accepted sound, empty when not matched
	Name       string        // Name of the accepted sound
	BestScore  float64       // Top score seen, even without a match
	BestOffset int           // Frame offset of the top score
	Threshold  float64       // Threshold the decision was made against
	FrameCount int           // Frames in the query fingerprint
	Ranked     []RankedScore // All scored entries, best first
}
