package scheduler

import "math/rand/v2"

// RNG is the source of randomness used by the engine. Injecting it lets
// tests assert exact selection outcomes. *rand.Rand from math/rand/v2
// satisfies it.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a pseudo-random RNG suitable for production use.
func NewRand() RNG {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Params holds the scheduling constants. The backlog thresholds and
// ratios were chosen empirically in the original product; they are kept
// as configuration rather than re-derived.
type Params struct {
	// Backlog thresholds for the new-vs-review step function, measured in
	// words currently in review.
	SmallBacklog  int
	MediumBacklog int
	LargeBacklog  int

	// Probability of drawing from the new pool at each backlog band.
	// Above LargeBacklog the engine reviews exclusively.
	NewRatioSmall  float64
	NewRatioMedium float64
	NewRatioLarge  float64

	// OldestBias is the probability of picking from the oldest quartile
	// of a review group instead of the whole group. It only applies when
	// the group holds more than BiasMinGroup candidates.
	OldestBias   float64
	BiasMinGroup int
}

// DefaultParams provides the production scheduling constants.
func DefaultParams() *Params {
	return &Params{
		SmallBacklog:   10,
		MediumBacklog:  20,
		LargeBacklog:   50,
		NewRatioSmall:  1.0,
		NewRatioMedium: 0.6,
		NewRatioLarge:  0.3,
		OldestBias:     0.7,
		BiasMinGroup:   3,
	}
}

// NewRatio maps the review backlog size to the probability of showing a
// new word: a small backlog is all new words, a large one is all review.
func (p *Params) NewRatio(wordsInReview int) float64 {
	switch {
	case wordsInReview <= p.SmallBacklog:
		return p.NewRatioSmall
	case wordsInReview <= p.MediumBacklog:
		return p.NewRatioMedium
	case wordsInReview <= p.LargeBacklog:
		return p.NewRatioLarge
	}
	return 0
}
