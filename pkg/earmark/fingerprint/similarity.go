package fingerprint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultOffsetStep is the spacing, in frames, of the tested offsets.
	DefaultOffsetStep = 5
	// DefaultMaxOffset caps the offset search in frames.
	DefaultMaxOffset = 10
	// offsetFraction limits the search to a share of the shorter fingerprint.
	offsetFraction = 0.05

	decayRate  = 1.5
	diffFloor  = 0.001
	weightsSum = 1.0
)

// Weights is the per-feature weighting in FeatureNames order. Band energies
// carry most of the weight. Stored scores depend on this exact table.
var Weights = [FeatureCount]float64{
	0.03, // energy
	0.05, // zcr
	0.05, // spectralCentroid
	0.04, // spectralFlux
	0.04, // spectralRolloff
	0.12, // subBass
	0.14, // bass
	0.13, // lowMid
	0.15, // mid
	0.11, // highMid
	0.08, // presence
	0.06, // brilliance
}

func init() {
	if err := checkWeights(Weights); err != nil {
		panic(err)
	}
}

func checkWeights(w [FeatureCount]float64) error {
	sum := floats.Sum(w[:])
	if math.Abs(sum-weightsSum) > 1e-9 {
		return fmt.Errorf("feature weights sum to %v, want %v", sum, weightsSum)
	}
	return nil
}

// Similarity is the outcome of comparing two fingerprints.
type Similarity struct {
	Score  float64 // best score over the tested offsets, in [0,1]
	Offset int     // frame offset of b relative to a that produced Score
}

// Scorer compares two fingerprints.
type Scorer interface {
	Score(a, b Fingerprint) Similarity
}

// WeightedScorer scores fingerprints by weighted, exponentially decayed
// per-feature differences, searching a few small frame offsets.
type WeightedScorer struct {
	OffsetStep int
	MaxOffset  int
}

// NewWeightedScorer returns a scorer with the default offset search.
func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{OffsetStep: DefaultOffsetStep, MaxOffset: DefaultMaxOffset}
}

// Compare scores a against b with the default scorer.
func Compare(a, b Fingerprint) Similarity {
	return NewWeightedScorer().Score(a, b)
}

// Score returns the best similarity over offset 0 and ±step, ±2·step, ...
// up to the offset limit. An empty fingerprint scores 0.
func (s *WeightedScorer) Score(a, b Fingerprint) Similarity {
	if len(a) == 0 || len(b) == 0 {
		return Similarity{}
	}

	best := Similarity{Score: scoreAtOffset(a, b, 0)}

	step := s.OffsetStep
	if step <= 0 {
		best.Score = math.Min(best.Score, 1)
		return best
	}
	limit := s.offsetLimit(len(a), len(b))
	for off := step; off <= limit; off += step {
		for _, o := range [2]int{-off, off} {
			if score := scoreAtOffset(a, b, o); score > best.Score {
				best = Similarity{Score: score, Offset: o}
			}
		}
	}
	best.Score = math.Min(best.Score, 1)
	return best
}

func (s *WeightedScorer) offsetLimit(lenA, lenB int) int {
	limit := int(math.Floor(offsetFraction * float64(min(lenA, lenB))))
	return min(s.MaxOffset, limit)
}

// scoreAtOffset pairs a[i] with b[i+offset] and averages the frame
// similarity over the overlap.
func scoreAtOffset(a, b Fingerprint, offset int) float64 {
	start := max(0, -offset)
	end := min(len(a), len(b)-offset)
	if end-start <= 0 {
		return 0
	}

	var total float64
	for i := start; i < end; i++ {
		total += frameSimilarity(a[i], b[i+offset])
	}
	return total / float64(end-start)
}

func frameSimilarity(x, y Features) float64 {
	xv, yv := x.Values(), y.Values()
	var sim float64
	for i := range xv {
		sim += Weights[i] * featureSimilarity(xv[i], yv[i])
	}
	return sim
}

func featureSimilarity(x, y float64) float64 {
	denom := math.Max(math.Max(math.Abs(x), math.Abs(y)), diffFloor)
	return math.Exp(-decayRate * math.Abs(x-y) / denom)
}
