package tournamentdomain

import "fmt"

// ReportRoundScore appends one score for the current round to every active
// player. The user receives userScore when it is non-nil; everyone else, and
// the user without a reported score, draws from src. Eliminated players are
// carried through unchanged. The input tournament is not modified.
func ReportRoundScore(t Tournament, userScore *int, src ScoreSource) (Tournament, error) {
	if t.Finished() {
		return t, ErrTournamentFinished
	}
	if t.Stage != StageAwaitingScores {
		return t, fmt.Errorf("%w: scores already reported for round %d", ErrOutOfOrder, t.CurrentRound)
	}
	if src == nil {
		return t, fmt.Errorf("%w: no score source", ErrInvalidConfiguration)
	}
	if activeCount(t.Players) == 0 {
		return t, ErrEmptyActiveSet
	}
	if userScore != nil && (*userScore < 0 || *userScore > MaxRoundScore) {
		return t, fmt.Errorf("%w: %d outside [0, %d]", ErrInvalidScore, *userScore, MaxRoundScore)
	}

	out := t.clone()
	for i, p := range out.Players {
		if !p.Active() {
			continue
		}
		var score int
		if p.User && userScore != nil {
			score = *userScore
		} else {
			score = src.Draw(p, t.CurrentRound)
		}
		out.Players[i] = p.withScore(score)
	}
	out.Stage = StageScored
	return out, nil
}
