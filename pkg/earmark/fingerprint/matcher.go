package fingerprint

import (
	"context"
	"sort"
)

// DefaultThreshold is the minimum score accepted as a match.
const DefaultThreshold = 0.85

// Candidate is a stored fingerprint offered to the matcher.
type Candidate struct {
	ID          string
	OwnerID     string
	Fingerprint Fingerprint
}

// RankedScore is one scored candidate.
type RankedScore struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"owner_id"`
	Score   float64 `json:"score"`
	Offset  int     `json:"offset"`
}

// MatchResult is the outcome of scanning a library. BestID is empty unless
// BestScore reached the threshold; BestScore is always the top score seen.
type MatchResult struct {
	BestID     string
	BestScore  float64
	BestOffset int
	Ranked     []RankedScore
}

// Matched reports whether a candidate was accepted.
func (r MatchResult) Matched() bool { return r.BestID != "" }

// Matcher performs a linear scan of candidates against a query.
type Matcher struct {
	scorer Scorer
}

// NewMatcher returns a matcher using scorer, or the default weighted scorer
// when scorer is nil.
func NewMatcher(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = NewWeightedScorer()
	}
	return &Matcher{scorer: scorer}
}

// Match scores query against every candidate owned by ownerID (all
// candidates when ownerID is empty) and ranks them by descending score.
// The only error returned is the context's.
func (m *Matcher) Match(ctx context.Context, query Fingerprint, candidates []Candidate, threshold float64, ownerID string) (MatchResult, error) {
	ranked := make([]RankedScore, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return MatchResult{}, err
		}
		if ownerID != "" && c.OwnerID != ownerID {
			continue
		}
		sim := m.scorer.Score(query, c.Fingerprint)
		ranked = append(ranked, RankedScore{
			ID:      c.ID,
			OwnerID: c.OwnerID,
			Score:   sim.Score,
			Offset:  sim.Offset,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	result := MatchResult{Ranked: ranked}
	if len(ranked) == 0 {
		return result, nil
	}
	top := ranked[0]
	result.BestScore = top.Score
	result.BestOffset = top.Offset
	if top.Score >= threshold {
		result.BestID = top.ID
	}
	return result, nil
}
