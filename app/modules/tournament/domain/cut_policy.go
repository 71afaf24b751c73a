package tournamentdomain

import (
	"fmt"
	"slices"
)

// CutPolicy decides how many players should survive the cut after a round.
type CutPolicy interface {
	// SurvivorTarget returns the number of survivors aimed for after round,
	// given the number of players active going into the cut.
	SurvivorTarget(round, active int) (int, error)
	// Validate checks the policy can serve every round of a tournament.
	Validate(totalRounds int) error
}

// SurvivorTable is a fixed round → survivor count table.
type SurvivorTable map[int]int

// SurvivorTarget implements CutPolicy.
func (s SurvivorTable) SurvivorTarget(round, _ int) (int, error) {
	target, ok := s[round]
	if !ok {
		return 0, fmt.Errorf("%w: no survivor target for round %d", ErrInvalidConfiguration, round)
	}
	if target < 1 {
		return 0, fmt.Errorf("%w: survivor target for round %d is %d", ErrInvalidConfiguration, round, target)
	}
	return target, nil
}

// Validate implements CutPolicy.
func (s SurvivorTable) Validate(totalRounds int) error {
	for round := 1; round <= totalRounds; round++ {
		if _, err := s.SurvivorTarget(round, 0); err != nil {
			return err
		}
	}
	return nil
}

// Rounds returns the configured rounds in ascending order.
func (s SurvivorTable) Rounds() []int {
	rounds := make([]int, 0, len(s))
	for r := range s {
		rounds = append(rounds, r)
	}
	slices.Sort(rounds)
	return rounds
}

// ProportionalCut has no cut in round 1, halves the field in round 2 and
// then spreads the remaining field over the rounds left.
type ProportionalCut struct {
	TotalRounds int
}

// SurvivorTarget implements CutPolicy.
func (p ProportionalCut) SurvivorTarget(round, active int) (int, error) {
	if active < 1 {
		return 0, ErrEmptyActiveSet
	}
	var cut int
	switch {
	case round <= 1:
		cut = 0
	case round == 2:
		cut = active / 2
	default:
		remaining := max(1, p.TotalRounds-round)
		cut = max(1, ceilDiv(active, remaining))
	}
	return max(1, active-cut), nil
}

// Validate implements CutPolicy.
func (p ProportionalCut) Validate(totalRounds int) error {
	if p.TotalRounds != totalRounds {
		return fmt.Errorf("%w: proportional cut built for %d rounds, tournament has %d", ErrInvalidConfiguration, p.TotalRounds, totalRounds)
	}
	return nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// CutKind names a CutPolicy implementation in configuration.
type CutKind string

const (
	CutSurvivorTable CutKind = "survivor_table"
	CutProportional  CutKind = "proportional"
)

// CutPolicyConfig is the serialisable description of a cut policy.
type CutPolicyConfig struct {
	Kind            CutKind     `yaml:"kind" json:"kind"`
	SurvivorTargets map[int]int `yaml:"survivor_targets,omitempty" json:"survivor_targets,omitempty"`
}

// Build returns the policy described by the config.
func (c CutPolicyConfig) Build(totalRounds int) (CutPolicy, error) {
	switch c.Kind {
	case CutSurvivorTable:
		table := SurvivorTable{}
		for round, target := range c.SurvivorTargets {
			table[round] = target
		}
		return table, nil
	case CutProportional:
		return ProportionalCut{TotalRounds: totalRounds}, nil
	default:
		return nil, fmt.Errorf("%w: unknown cut policy %q", ErrInvalidConfiguration, c.Kind)
	}
}
