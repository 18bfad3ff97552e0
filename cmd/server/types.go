package main

import (
	"fmt"
	"math"
	"time"

	"github.com/himanishpuri/EarMark/pkg/earmark/fingerprint"
	"github.com/himanishpuri/EarMark/pkg/models"
)

// Fingerprint limit constants for validation
const (
	// MaxFingerprintFrames is the absolute maximum accepted (~4.5 minutes at 44.1 kHz)
	MaxFingerprintFrames = 6000

	// FrameWarningThreshold triggers logging for large fingerprints
	FrameWarningThreshold = 2000
)

// IdentifyFingerprintRequest is the request body for POST /api/identify/fingerprint
type IdentifyFingerprintRequest struct {
	// Fingerprint is the frame list produced by earmarkFingerprint in the browser
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`

	// OwnerID restricts matching to one user's sounds (optional)
	OwnerID string `json:"owner_id,omitempty"`
}

// Validate checks if the request is valid
func (r *IdentifyFingerprintRequest) Validate() error {
	if len(r.Fingerprint) == 0 {
		return fmt.Errorf("fingerprint cannot be empty")
	}
	if len(r.Fingerprint) > MaxFingerprintFrames {
		return fmt.Errorf("too many frames: %d (maximum: %d)", len(r.Fingerprint), MaxFingerprintFrames)
	}

	for i, frame := range r.Fingerprint {
		if !isValidFrame(frame) {
			return fmt.Errorf("invalid feature values in frame %d", i)
		}
	}
	return nil
}

// isValidFrame rejects frames no extractor could have produced: every
// feature is finite and non-negative.
func isValidFrame(f fingerprint.Features) bool {
	for _, v := range f.Values() {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// TeachSoundResponse is the response for successful sound teaching
type TeachSoundResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// SoundDTO represents a sound in API responses
type SoundDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id"`
	FrameCount int       `json:"frame_count"`
	SampleRate int       `json:"sample_rate"`
	DurationMs int       `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func toSoundDTO(e models.SoundEntry) SoundDTO {
	return SoundDTO{
		ID:         e.ID,
		Name:       e.Name,
		OwnerID:    e.OwnerID,
		FrameCount: len(e.Fingerprint),
		SampleRate: e.SampleRate,
		DurationMs: e.DurationMs,
		CreatedAt:  e.CreatedAt,
	}
}

// ListSoundsResponse is the response for GET /api/sounds
type ListSoundsResponse struct {
	Sounds []SoundDTO `json:"sounds"`
	Count  int        `json:"count"`
}

// DeleteSoundResponse is the response for DELETE /api/sounds/{id}
type DeleteSoundResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// RankedScoreDTO is one scored library entry
type RankedScoreDTO struct {
	SoundID string  `json:"sound_id"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Offset  int     `json:"offset"`
}

// IdentifyResponse is the response for both identify endpoints. A clip that
// matches nothing is still a 200 with matched=false.
type IdentifyResponse struct {
	Matched    bool             `json:"matched"`
	SoundID    string           `json:"sound_id,omitempty"`
	Name       string           `json:"name,omitempty"`
	BestScore  float64          `json:"best_score"`
	BestOffset int              `json:"best_offset"`
	Threshold  float64          `json:"threshold"`
	FrameCount int              `json:"frame_count"`
	Ranked     []RankedScoreDTO `json:"ranked"`
}

func toIdentifyResponse(r *models.IdentifyResult) IdentifyResponse {
	ranked := make([]RankedScoreDTO, len(r.Ranked))
	for i, rs := range r.Ranked {
		ranked[i] = RankedScoreDTO{SoundID: rs.SoundID, Name: rs.Name, Score: rs.Score, Offset: rs.Offset}
	}
	return IdentifyResponse{
		Matched:    r.Matched,
		SoundID:    r.SoundID,
		Name:       r.Name,
		BestScore:  r.BestScore,
		BestOffset: r.BestOffset,
		Threshold:  r.Threshold,
		FrameCount: r.FrameCount,
		Ranked:     ranked,
	}
}

// MetricsResponse provides server health and library metrics
type MetricsResponse struct {
	Status       string  `json:"status"`
	Backend      string  `json:"backend"`
	DatabasePath string  `json:"database_path,omitempty"`
	SoundCount   int     `json:"sound_count"`
	SampleRate   int     `json:"sample_rate"`
	Threshold    float64 `json:"threshold"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
