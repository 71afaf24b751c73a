package tournamentdomain

import (
	"cmp"
	"fmt"
	"slices"
)

// Direction says which end of the score scale wins.
type Direction string

const (
	HigherWins Direction = "higher_wins"
	LowerWins  Direction = "lower_wins"
)

// TieBreak is one link of the tie-break chain applied after total score.
type TieBreak string

const (
	// TieBreakLastRound prefers the better most recent round score.
	TieBreakLastRound TieBreak = "last_round"
	// TieBreakSeed prefers the lower tiebreak seed.
	TieBreakSeed TieBreak = "seed"
)

// EliminatedOrder orders eliminated players among themselves.
type EliminatedOrder string

const (
	EliminatedByScore EliminatedOrder = "score"
	EliminatedByRound EliminatedOrder = "round"
)

// Ranking is the comparator used to order a field.
type Ranking struct {
	Direction  Direction       `yaml:"direction" json:"direction"`
	TieBreaks  []TieBreak      `yaml:"tie_breaks" json:"tie_breaks"`
	Eliminated EliminatedOrder `yaml:"eliminated_order" json:"eliminated_order"`
}

// Validate checks every enum field is known.
func (r Ranking) Validate() error {
	switch r.Direction {
	case HigherWins, LowerWins:
	default:
		return fmt.Errorf("%w: unknown score direction %q", ErrInvalidConfiguration, r.Direction)
	}
	for _, tb := range r.TieBreaks {
		switch tb {
		case TieBreakLastRound, TieBreakSeed:
		default:
			return fmt.Errorf("%w: unknown tie-break %q", ErrInvalidConfiguration, tb)
		}
	}
	switch r.Eliminated {
	case "", EliminatedByScore, EliminatedByRound:
	default:
		return fmt.Errorf("%w: unknown eliminated order %q", ErrInvalidConfiguration, r.Eliminated)
	}
	return nil
}

// better returns a negative number when a ranks ahead of b on raw values.
func (r Ranking) better(a, b int) int {
	if r.Direction == LowerWins {
		return cmp.Compare(a, b)
	}
	return cmp.Compare(b, a)
}

// CompareScores orders two players on total score and the tie-break chain,
// ignoring elimination status. Zero means the players are tied.
func (r Ranking) CompareScores(a, b Player) int {
	if c := r.better(a.TotalScore, b.TotalScore); c != 0 {
		return c
	}
	for _, tb := range r.TieBreaks {
		var c int
		switch tb {
		case TieBreakLastRound:
			c = r.better(a.LastRoundScore(), b.LastRoundScore())
		case TieBreakSeed:
			c = cmp.Compare(a.TiebreakSeed, b.TiebreakSeed)
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Compare is the full ordering: active players first, then score.
func (r Ranking) Compare(a, b Player) int {
	if a.IsEliminated != b.IsEliminated {
		if a.IsEliminated {
			return 1
		}
		return -1
	}
	if a.IsEliminated && r.Eliminated == EliminatedByRound {
		if c := cmp.Compare(eliminationRound(b), eliminationRound(a)); c != 0 {
			return c
		}
	}
	return r.CompareScores(a, b)
}

func eliminationRound(p Player) int {
	if p.EliminatedAtRound == nil {
		return 0
	}
	return *p.EliminatedAtRound
}

// Rank returns a copy of players in rank order. The sort is stable, so
// players that compare equal keep their relative order. Rank is defined for
// any field, including an empty one; use RankActive where an empty active set
// is an error.
func (r Ranking) Rank(players []Player) []Player {
	out := clonePlayers(players)
	slices.SortStableFunc(out, r.Compare)
	return out
}

// RankActive ranks only the active players and fails with ErrEmptyActiveSet
// when there are none.
func (r Ranking) RankActive(players []Player) ([]Player, error) {
	active := make([]Player, 0, len(players))
	for _, p := range players {
		if p.Active() {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, ErrEmptyActiveSet
	}
	return r.Rank(active), nil
}

// Standing is one row of a ranked field.
type Standing struct {
	Position int    `json:"position"`
	Player   Player `json:"player"`
}

// Standings ranks the field and assigns display positions; tied players share
// a position.
func (r Ranking) Standings(players []Player) []Standing {
	ranked := r.Rank(players)
	out := make([]Standing, len(ranked))
	for i, p := range ranked {
		pos := i + 1
		if i > 0 && r.Compare(ranked[i-1], p) == 0 {
			pos = out[i-1].Position
		}
		out[i] = Standing{Position: pos, Player: p}
	}
	return out
}
