package tournamentservice

import (
	"time"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
)

// Settings are the game rules the service runs with.
type Settings struct {
	BuyInOptions      []float64
	Variants          map[string]tournamentdomain.Variant
	FieldFillInterval time.Duration
	LobbyTimeout      time.Duration
	CutRevealDelay    time.Duration
	PostRoundWait     time.Duration
}

// DefaultSettings mirrors the stock game: five contest tiers, both variants
// and thirty second lobby and review windows.
func DefaultSettings() Settings {
	basketball := tournamentdomain.BasketballVariant()
	golf := tournamentdomain.GolfVariant()
	return Settings{
		BuyInOptions: []float64{2, 5, 10, 20, 50},
		Variants: map[string]tournamentdomain.Variant{
			basketball.Name: basketball,
			golf.Name:       golf,
		},
		FieldFillInterval: 300 * time.Millisecond,
		LobbyTimeout:      30 * time.Second,
		CutRevealDelay:    1500 * time.Millisecond,
		PostRoundWait:     30 * time.Second,
	}
}

// JoinContestRequest is a buy-in into a new tournament.
type JoinContestRequest struct {
	AccountID string  `json:"account_id"`
	Variant   string  `json:"variant"`
	BuyIn     float64 `json:"buy_in"`
}

// ContestOption is one buy-in tier of a variant.
type ContestOption struct {
	BuyIn     float64 `json:"buy_in"`
	PrizePool float64 `json:"prize_pool"`
}

// VariantContests lists the tiers offered for a variant.
type VariantContests struct {
	Variant     string          `json:"variant"`
	Entrants    int             `json:"entrants"`
	TotalRounds int             `json:"total_rounds"`
	Options     []ContestOption `json:"options"`
}

// ContestList is the selection screen: every variant and the caller's balance.
type ContestList struct {
	Balance  float64           `json:"balance"`
	Variants []VariantContests `json:"variants"`
}

// SessionView is the read model of a session.
type SessionView struct {
	ID             string                             `json:"id"`
	AccountID      string                             `json:"account_id"`
	Variant        string                             `json:"variant"`
	Phase          tournamentdomain.Phase             `json:"phase"`
	BuyIn          float64                            `json:"buy_in"`
	PrizePool      float64                            `json:"prize_pool"`
	CurrentRound   int                                `json:"current_round"`
	TotalRounds    int                                `json:"total_rounds"`
	ActivePlayers  int                                `json:"active_players"`
	UserEliminated bool                               `json:"user_eliminated"`
	Standings      []tournamentdomain.Standing        `json:"standings,omitempty"`
	LastRound      *tournamentdomain.RoundResult      `json:"last_round,omitempty"`
	Result         *tournamentdomain.TournamentResult `json:"result,omitempty"`
}

// RoundOutcome is returned when a cut is resolved. Replayed is set when the
// cut had already been applied and the stored outcome is returned again.
type RoundOutcome struct {
	Session  SessionView
	Round    tournamentdomain.RoundResult
	Result   *tournamentdomain.TournamentResult
	Replayed bool
}

func newSessionView(s *tournamentdb.Session, variant tournamentdomain.Variant) SessionView {
	v := SessionView{
		ID:          s.ID,
		AccountID:   s.AccountID,
		Variant:     s.Variant,
		Phase:       s.Phase,
		BuyIn:       s.BuyIn,
		PrizePool:   tournamentdomain.PrizePool(variant.Entrants, s.BuyIn, variant.HouseRake),
		TotalRounds: variant.TotalRounds,
	}
	t := s.Tournament
	if len(t.Players) == 0 {
		return v
	}
	v.CurrentRound = t.CurrentRound
	v.ActivePlayers = len(t.ActivePlayers())
	if user, ok := t.User(); ok {
		v.UserEliminated = user.IsEliminated
	}
	v.Standings = t.Standings()
	v.LastRound = t.LastRound
	v.Result = t.Result
	return v
}
