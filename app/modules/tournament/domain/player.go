package tournamentdomain

import "fmt"

// PlayerID is the stable 1-based identifier of an entrant.
type PlayerID int

// UserDisplayName is the name given to the distinguished human entrant.
const UserDisplayName = "You (User)"

// Player is a single entrant of a tournament.
type Player struct {
	ID                PlayerID `json:"id"`
	Name              string   `json:"name"`
	User              bool     `json:"is_user"`
	RoundScores       []int    `json:"round_scores"`
	TotalScore        int      `json:"total_score"`
	IsEliminated      bool     `json:"is_eliminated"`
	EliminatedAtRound *int     `json:"eliminated_at_round,omitempty"`
	TiebreakSeed      float64  `json:"tiebreak_seed"`
}

// LastRoundScore returns the most recent round score, or 0 if no round was scored.
func (p Player) LastRoundScore() int {
	if len(p.RoundScores) == 0 {
		return 0
	}
	return p.RoundScores[len(p.RoundScores)-1]
}

// Active reports whether the player is still in contention.
func (p Player) Active() bool {
	return !p.IsEliminated
}

func (p Player) clone() Player {
	out := p
	out.RoundScores = append([]int(nil), p.RoundScores...)
	if p.EliminatedAtRound != nil {
		r := *p.EliminatedAtRound
		out.EliminatedAtRound = &r
	}
	return out
}

func (p Player) withScore(score int) Player {
	out := p.clone()
	out.RoundScores = append(out.RoundScores, score)
	out.TotalScore = sumScores(out.RoundScores)
	return out
}

func (p Player) eliminate(round int) Player {
	if p.IsEliminated {
		return p
	}
	out := p.clone()
	out.IsEliminated = true
	r := round
	out.EliminatedAtRound = &r
	return out
}

func sumScores(scores []int) int {
	total := 0
	for _, s := range scores {
		total += s
	}
	return total
}

func clonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.clone()
	}
	return out
}

func activeCount(players []Player) int {
	n := 0
	for _, p := range players {
		if p.Active() {
			n++
		}
	}
	return n
}

// NewField builds the entrant list: the user first, then simulated players
// named with the given prefix.
func NewField(entrants int, simulatedPrefix string, seeds func() float64) []Player {
	players := make([]Player, 0, entrants)
	for i := 1; i <= entrants; i++ {
		p := Player{
			ID:          PlayerID(i),
			Name:        fmt.Sprintf("%s %d", simulatedPrefix, i),
			RoundScores: []int{},
		}
		if i == 1 {
			p.Name = UserDisplayName
			p.User = true
		}
		if seeds != nil {
			p.TiebreakSeed = seeds()
		}
		players = append(players, p)
	}
	return players
}
