package tournamentdb

import (
	"time"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
)

// Session is one account's run through a tournament, from buy-in to payout.
type Session struct {
	ID         string                         `json:"id"`
	AccountID  string                         `json:"account_id"`
	Variant    string                         `json:"variant"`
	BuyIn      float64                        `json:"buy_in"`
	Phase      tournamentdomain.Phase         `json:"phase"`
	Tournament tournamentdomain.Tournament    `json:"tournament"`
	History    []tournamentdomain.RoundResult `json:"history"`
	CreatedAt  time.Time                      `json:"created_at"`
	UpdatedAt  time.Time                      `json:"updated_at"`
}

// Clone returns a copy that shares nothing mutable with s.
func (s *Session) Clone() *Session {
	out := *s
	out.History = append([]tournamentdomain.RoundResult(nil), s.History...)
	out.Tournament.Players = append([]tournamentdomain.Player(nil), s.Tournament.Players...)
	return &out
}
