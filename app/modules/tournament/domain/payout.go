package tournamentdomain

// TournamentResult is the terminal output of a tournament. Crediting the
// user's payout is left to the caller.
type TournamentResult struct {
	FinalRound int        `json:"final_round"`
	PrizePool  float64    `json:"prize_pool"`
	Winners    []PlayerID `json:"winners"`
	Share      float64    `json:"share"`
	UserWon    bool       `json:"user_won"`
	UserPayout float64    `json:"user_payout"`
	Standings  []Standing `json:"standings"`
}

// ShouldTerminate reports whether a tournament is over after round.
func ShouldTerminate(round, totalRounds, active int) bool {
	return round >= totalRounds || active <= 1
}

// Payout splits the prize pool evenly between the remaining active players.
func Payout(t Tournament) (TournamentResult, error) {
	winners, err := t.Variant.Ranking.RankActive(t.Players)
	if err != nil {
		return TournamentResult{}, err
	}

	res := TournamentResult{
		FinalRound: t.CurrentRound,
		PrizePool:  t.PrizePool,
		Share:      t.PrizePool / float64(len(winners)),
		Standings:  t.Standings(),
	}
	for _, w := range winners {
		res.Winners = append(res.Winners, w.ID)
		if w.User {
			res.UserWon = true
			res.UserPayout = res.Share
		}
	}
	return res, nil
}
