package tournamentdomain

import "fmt"

// NextStep tells the caller what follows a resolved round.
type NextStep string

const (
	NextAdvance  NextStep = "advance"
	NextFinished NextStep = "finished"
)

// RoundResult describes the outcome of one cut.
type RoundResult struct {
	Round          int        `json:"round"`
	Standings      []Player   `json:"standings"`
	Eliminated     []PlayerID `json:"eliminated"`
	SurvivorTarget int        `json:"survivor_target"`
	Survivors      int        `json:"survivors"`
	Cutline        int        `json:"cutline"`
	TieDetected    bool       `json:"tie_detected"`
	Next           NextStep   `json:"next"`
}

// ApplyElimination ranks a scored tournament, applies the cut for the
// current round and decides whether the tournament is over. Every active
// player ranking at or above the player in the target position survives, so
// a tie at the cutline keeps more players than the target.
func ApplyElimination(t Tournament) (Tournament, RoundResult, error) {
	if t.Finished() {
		return t, RoundResult{}, ErrTournamentFinished
	}
	if t.Stage != StageScored {
		return t, RoundResult{}, fmt.Errorf("%w: round %d has not been scored", ErrOutOfOrder, t.CurrentRound)
	}
	policy, err := t.CutPolicy()
	if err != nil {
		return t, RoundResult{}, err
	}

	ranking := t.Variant.Ranking
	ranked := ranking.Rank(t.Players)
	active := activeCount(ranked)
	if active == 0 {
		return t, RoundResult{}, ErrEmptyActiveSet
	}

	target, err := policy.SurvivorTarget(t.CurrentRound, active)
	if err != nil {
		return t, RoundResult{}, fmt.Errorf("round %d cut: %w", t.CurrentRound, err)
	}
	boundary := ranked[min(target, active)-1]

	var eliminated []PlayerID
	survivors := 0
	for i, p := range ranked {
		if !p.Active() {
			continue
		}
		if ranking.CompareScores(p, boundary) <= 0 {
			survivors++
			continue
		}
		ranked[i] = p.eliminate(t.CurrentRound)
		eliminated = append(eliminated, p.ID)
	}

	out := t.clone()
	out.Players = ranking.Rank(ranked)
	out.policy = policy

	result := RoundResult{
		Round:          t.CurrentRound,
		Standings:      clonePlayers(out.Players),
		Eliminated:     eliminated,
		SurvivorTarget: target,
		Survivors:      survivors,
		Cutline:        boundary.TotalScore,
		TieDetected:    survivors > target,
		Next:           NextAdvance,
	}

	if ShouldTerminate(out.CurrentRound, out.Variant.TotalRounds, survivors) {
		payout, err := Payout(out)
		if err != nil {
			return t, RoundResult{}, err
		}
		out.Stage = StageFinished
		out.Result = &payout
		result.Next = NextFinished
	} else {
		out.Stage = StageReviewed
	}
	out.LastRound = &result
	return out, result, nil
}
