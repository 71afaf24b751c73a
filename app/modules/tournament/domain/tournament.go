package tournamentdomain

import (
	"fmt"
)

// Stage tracks which engine step a tournament expects next.
type Stage string

const (
	StageAwaitingScores Stage = "awaiting_scores"
	StageScored         Stage = "scored"
	StageReviewed       Stage = "reviewed"
	StageFinished       Stage = "finished"
)

// Variant bundles every rule that differs between tournament formats.
type Variant struct {
	Name         string          `yaml:"name" json:"name"`
	Entrants     int             `yaml:"entrants" json:"entrants"`
	TotalRounds  int             `yaml:"total_rounds" json:"total_rounds"`
	HouseRake    float64         `yaml:"house_rake" json:"house_rake"`
	PlayerPrefix string          `yaml:"player_prefix" json:"player_prefix"`
	Scores       ScoreRange      `yaml:"scores" json:"scores"`
	Ranking      Ranking         `yaml:"ranking" json:"ranking"`
	Cut          CutPolicyConfig `yaml:"cut" json:"cut"`
}

// Validate checks the variant can run a complete tournament.
func (v Variant) Validate() error {
	if v.Entrants < 1 {
		return fmt.Errorf("%w: entrants must be at least 1, got %d", ErrInvalidConfiguration, v.Entrants)
	}
	if v.TotalRounds < 1 {
		return fmt.Errorf("%w: total rounds must be at least 1, got %d", ErrInvalidConfiguration, v.TotalRounds)
	}
	if v.HouseRake < 0 || v.HouseRake >= 1 {
		return fmt.Errorf("%w: house rake %v outside [0, 1)", ErrInvalidConfiguration, v.HouseRake)
	}
	if err := v.Scores.Validate(); err != nil {
		return err
	}
	if err := v.Ranking.Validate(); err != nil {
		return err
	}
	policy, err := v.Cut.Build(v.TotalRounds)
	if err != nil {
		return err
	}
	return policy.Validate(v.TotalRounds)
}

// BasketballVariant is the higher-wins format with a fixed survivor table.
func BasketballVariant() Variant {
	return Variant{
		Name:         "basketball",
		Entrants:     10,
		TotalRounds:  4,
		HouseRake:    0.10,
		PlayerPrefix: "Baller",
		Scores:       ScoreRange{Min: 5, Max: 19},
		Ranking: Ranking{
			Direction:  HigherWins,
			Eliminated: EliminatedByScore,
		},
		Cut: CutPolicyConfig{
			Kind:            CutSurvivorTable,
			SurvivorTargets: map[int]int{1: 6, 2: 4, 3: 2, 4: 1},
		},
	}
}

// GolfVariant is the lower-wins format with a proportional cut and a full
// tie-break chain.
func GolfVariant() Variant {
	return Variant{
		Name:         "golf",
		Entrants:     50,
		TotalRounds:  5,
		HouseRake:    0.10,
		PlayerPrefix: "Golfer",
		Scores:       ScoreRange{Min: 50, Max: 75},
		Ranking: Ranking{
			Direction:  LowerWins,
			TieBreaks:  []TieBreak{TieBreakLastRound, TieBreakSeed},
			Eliminated: EliminatedByRound,
		},
		Cut: CutPolicyConfig{Kind: CutProportional},
	}
}

// StartCommand carries everything needed to open a tournament.
type StartCommand struct {
	ID      string
	Variant Variant
	BuyIn   float64
	// Policy overrides the cut policy built from Variant.Cut.
	Policy CutPolicy
}

// Tournament is the engine's aggregate. Engine steps never mutate their
// input; they return a new Tournament value.
type Tournament struct {
	ID           string            `json:"id"`
	Variant      Variant           `json:"variant"`
	Players      []Player          `json:"players"`
	CurrentRound int               `json:"current_round"`
	BuyIn        float64           `json:"buy_in"`
	PrizePool    float64           `json:"prize_pool"`
	Stage        Stage             `json:"stage"`
	LastRound    *RoundResult      `json:"last_round,omitempty"`
	Result       *TournamentResult `json:"result,omitempty"`

	policy CutPolicy
}

// PrizePool is the net pool after the house rake.
func PrizePool(entrants int, buyIn, houseRake float64) float64 {
	return float64(entrants) * buyIn * (1 - houseRake)
}

// Start validates the command and builds a tournament at round 1. seeds
// supplies tie-break seeds and may be nil.
func Start(cmd StartCommand, seeds func() float64) (Tournament, error) {
	v := cmd.Variant
	if err := v.Validate(); err != nil {
		return Tournament{}, err
	}
	if cmd.BuyIn < 0 {
		return Tournament{}, fmt.Errorf("%w: negative buy-in %v", ErrInvalidConfiguration, cmd.BuyIn)
	}
	policy := cmd.Policy
	if policy == nil {
		var err error
		if policy, err = v.Cut.Build(v.TotalRounds); err != nil {
			return Tournament{}, err
		}
	}
	if err := policy.Validate(v.TotalRounds); err != nil {
		return Tournament{}, err
	}

	return Tournament{
		ID:           cmd.ID,
		Variant:      v,
		Players:      NewField(v.Entrants, v.PlayerPrefix, seeds),
		CurrentRound: 1,
		BuyIn:        cmd.BuyIn,
		PrizePool:    PrizePool(v.Entrants, cmd.BuyIn, v.HouseRake),
		Stage:        StageAwaitingScores,
		policy:       policy,
	}, nil
}

// Finished reports whether the tournament has terminated.
func (t Tournament) Finished() bool {
	return t.Stage == StageFinished
}

// ActivePlayers returns the players still in contention, in field order.
func (t Tournament) ActivePlayers() []Player {
	var out []Player
	for _, p := range t.Players {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// User returns the distinguished user entrant.
func (t Tournament) User() (Player, bool) {
	for _, p := range t.Players {
		if p.User {
			return p, true
		}
	}
	return Player{}, false
}

// Standings ranks the field with the tournament's comparator.
func (t Tournament) Standings() []Standing {
	return t.Variant.Ranking.Standings(t.Players)
}

// CutPolicy returns the policy in force, rebuilding it from the variant when
// the tournament was decoded rather than started.
func (t Tournament) CutPolicy() (CutPolicy, error) {
	if t.policy != nil {
		return t.policy, nil
	}
	return t.Variant.Cut.Build(t.Variant.TotalRounds)
}

func (t Tournament) clone() Tournament {
	out := t
	out.Players = clonePlayers(t.Players)
	return out
}

// AdvanceRound moves a reviewed tournament to the next round.
func AdvanceRound(t Tournament) (Tournament, error) {
	if t.Finished() {
		return t, ErrTournamentFinished
	}
	if t.Stage != StageReviewed {
		return t, fmt.Errorf("%w: round %d has not been resolved", ErrOutOfOrder, t.CurrentRound)
	}
	out := t.clone()
	out.CurrentRound++
	out.Stage = StageAwaitingScores
	return out, nil
}

// PlayRound scores, resolves and, unless the tournament ended, advances one
// round.
func PlayRound(t Tournament, userScore *int, src ScoreSource) (Tournament, RoundResult, error) {
	scored, err := ReportRoundScore(t, userScore, src)
	if err != nil {
		return t, RoundResult{}, err
	}
	resolved, result, err := ApplyElimination(scored)
	if err != nil {
		return t, RoundResult{}, err
	}
	if resolved.Finished() {
		return resolved, result, nil
	}
	next, err := AdvanceRound(resolved)
	if err != nil {
		return t, RoundResult{}, err
	}
	return next, result, nil
}
