package tournamentdomain

import (
	"fmt"
	"math/rand/v2"
)

// ScoreSource produces a round score for a player that did not report one.
type ScoreSource interface {
	Draw(p Player, round int) int
}

// MaxRoundScore bounds any single round score so totals cannot overflow.
const MaxRoundScore = 1_000_000

// ScoreRange is an inclusive range of simulated round scores.
type ScoreRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Validate checks the range is well formed.
func (r ScoreRange) Validate() error {
	if r.Min < 0 || r.Max < r.Min || r.Max > MaxRoundScore {
		return fmt.Errorf("%w: score range [%d, %d]", ErrInvalidConfiguration, r.Min, r.Max)
	}
	return nil
}

// RandomScores draws uniformly from a ScoreRange.
type RandomScores struct {
	Range ScoreRange
	rng   *rand.Rand
}

// NewRandomScores returns a uniform score source. A nil rng uses a randomly
// seeded generator.
func NewRandomScores(r ScoreRange, rng *rand.Rand) *RandomScores {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomScores{Range: r, rng: rng}
}

// Draw implements ScoreSource.
func (s *RandomScores) Draw(_ Player, _ int) int {
	return s.Range.Min + s.rng.IntN(s.Range.Max-s.Range.Min+1)
}

// Seed draws a tie-break seed in [0, 1).
func (s *RandomScores) Seed() float64 {
	return s.rng.Float64()
}

// ScoreFunc adapts a plain function to ScoreSource.
type ScoreFunc func(p Player, round int) int

// Draw implements ScoreSource.
func (f ScoreFunc) Draw(p Player, round int) int {
	return f(p, round)
}
