package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator creates reproducible test data. Use a fixed seed in
// tests that assert on concrete values.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was built with.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// Score draws an inclusive score in [lo, hi].
func (g *TestDataGenerator) Score(lo, hi int) int {
	return g.faker.IntRange(lo, hi)
}

// Scores draws n inclusive scores in [lo, hi].
func (g *TestDataGenerator) Scores(n, lo, hi int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = g.Score(lo, hi)
	}
	return out
}

// TiebreakSeed draws a seed in [0, 1).
func (g *TestDataGenerator) TiebreakSeed() float64 {
	return g.faker.Float64Range(0, 0.999999)
}

// AccountID returns a random account identifier.
func (g *TestDataGenerator) AccountID() string {
	return g.faker.UUID()
}

// DisplayName returns a random person name.
func (g *TestDataGenerator) DisplayName() string {
	return g.faker.Name()
}
