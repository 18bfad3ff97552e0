package fingerprint

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/himanishpuri/EarMark/internal/testaudio"
)

// fixedScorer scores a candidate by the energy of its first frame, so tests
// can dictate scores without building audio.
type fixedScorer struct{}

func (fixedScorer) Score(_, b Fingerprint) Similarity {
	if len(b) == 0 {
		return Similarity{}
	}
	return Similarity{Score: b[0].Energy}
}

func scored(score float64) Fingerprint {
	return Fingerprint{{Energy: score}}
}

func TestMatchRankedOrder(t *testing.T) {
	m := NewMatcher(fixedScorer{})
	candidates := []Candidate{
		{ID: "low", OwnerID: "u1", Fingerprint: scored(0.3)},
		{ID: "high", OwnerID: "u1", Fingerprint: scored(0.9)},
		{ID: "mid", OwnerID: "u1", Fingerprint: scored(0.6)},
	}

	result, err := m.Match(context.Background(), scored(1), candidates, DefaultThreshold, "")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	wantIDs := []string{"high", "mid", "low"}
	wantScores := []float64{0.9, 0.6, 0.3}
	if len(result.Ranked) != len(wantIDs) {
		t.Fatalf("Expected %d ranked entries, got %d", len(wantIDs), len(result.Ranked))
	}
	for i, r := range result.Ranked {
		if r.ID != wantIDs[i] || r.Score != wantScores[i] {
			t.Errorf("Ranked[%d] = (%s, %f), want (%s, %f)", i, r.ID, r.Score, wantIDs[i], wantScores[i])
		}
	}

	if result.BestID != "high" {
		t.Errorf("Expected best match 'high', got %q", result.BestID)
	}
}

func TestMatchThresholdBoundary(t *testing.T) {
	m := NewMatcher(fixedScorer{})
	tests := []struct {
		score   float64
		matched bool
	}{
		{0.849, false},
		{0.85, true},
		{0.851, true},
	}

	for _, tt := range tests {
		candidates := []Candidate{{ID: "bell", OwnerID: "u1", Fingerprint: scored(tt.score)}}
		result, err := m.Match(context.Background(), scored(1), candidates, 0.85, "")
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}

		if result.Matched() != tt.matched {
			t.Errorf("score %.3f: expected matched=%v, got BestID=%q", tt.score, tt.matched, result.BestID)
		}
		if result.BestScore != tt.score {
			t.Errorf("score %.3f: expected BestScore to be reported, got %f", tt.score, result.BestScore)
		}
	}
}

func TestMatchOwnerFilter(t *testing.T) {
	m := NewMatcher(fixedScorer{})
	candidates := []Candidate{
		{ID: "theirs", OwnerID: "u2", Fingerprint: scored(0.99)},
		{ID: "mine", OwnerID: "u1", Fingerprint: scored(0.9)},
		{ID: "mine-weak", OwnerID: "u1", Fingerprint: scored(0.2)},
	}

	result, err := m.Match(context.Background(), scored(1), candidates, DefaultThreshold, "u1")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if result.BestID != "mine" {
		t.Errorf("Expected best match 'mine', got %q", result.BestID)
	}
	for _, r := range result.Ranked {
		if r.OwnerID != "u1" {
			t.Errorf("Ranked list contains entry %s of owner %s", r.ID, r.OwnerID)
		}
	}
	if len(result.Ranked) != 2 {
		t.Errorf("Expected 2 ranked entries, got %d", len(result.Ranked))
	}
}

func TestMatchEmptyLibrary(t *testing.T) {
	result, err := NewMatcher(nil).Match(context.Background(), scored(1), nil, DefaultThreshold, "")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if result.Matched() || result.BestScore != 0 || len(result.Ranked) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestMatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := []Candidate{{ID: "a", Fingerprint: scored(0.9)}}
	_, err := NewMatcher(fixedScorer{}).Match(ctx, scored(1), candidates, DefaultThreshold, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMatchExactDuplicate(t *testing.T) {
	clip := testaudio.Doorbell(2)
	candidates := []Candidate{
		{ID: "song1", OwnerID: "u1", Fingerprint: BuildFingerprint(clip, testaudio.SampleRate)},
		{ID: "bark", OwnerID: "u1", Fingerprint: BuildFingerprint(testaudio.Bark(2, 9), testaudio.SampleRate)},
	}

	query := BuildFingerprint(clip, testaudio.SampleRate)
	result, err := NewMatcher(nil).Match(context.Background(), query, candidates, DefaultThreshold, "")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if result.BestID != "song1" {
		t.Errorf("Expected best match 'song1', got %q", result.BestID)
	}
	if math.Abs(result.BestScore-1.0) > 1e-9 {
		t.Errorf("Expected score 1.0 for identical clip, got %f", result.BestScore)
	}
}

func TestMatchDistinctSounds(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", OwnerID: "u1", Fingerprint: BuildFingerprint(testaudio.Doorbell(2), testaudio.SampleRate)},
		{ID: "b", OwnerID: "u1", Fingerprint: BuildFingerprint(testaudio.Bark(2, 21), testaudio.SampleRate)},
	}

	query := BuildFingerprint(testaudio.Chirp(3000, 5000, 0.3, 2), testaudio.SampleRate)
	result, err := NewMatcher(nil).Match(context.Background(), query, candidates, DefaultThreshold, "")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if result.Matched() {
		t.Errorf("Expected no match for an unrelated clip, got %q (%f)", result.BestID, result.BestScore)
	}
	for _, r := range result.Ranked {
		t.Logf("%s scored %.4f", r.ID, r.Score)
		if r.Score >= DefaultThreshold {
			t.Errorf("Entry %s crossed the threshold with %f", r.ID, r.Score)
		}
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", Fingerprint: BuildFingerprint(testaudio.Doorbell(1), testaudio.SampleRate)},
	}

	result, err := NewMatcher(nil).Match(context.Background(), BuildFingerprint(nil, testaudio.SampleRate), candidates, DefaultThreshold, "")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if result.Matched() || result.BestScore != 0 {
		t.Errorf("Expected empty query to score 0 without a match, got %+v", result)
	}
}
