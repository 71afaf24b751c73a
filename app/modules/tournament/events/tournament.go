// Package tournamentevents defines the topics and payloads exchanged by the
// tournament module.
package tournamentevents

import (
	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
)

const (
	// FieldReadyV1 fires once the simulated field has filled.
	FieldReadyV1 = "tournament.field.ready.v1"
	// RoundStartRequestedV1 fires when the lobby countdown of a round expires.
	RoundStartRequestedV1 = "tournament.round.start.requested.v1"
	// RoundScoreReportedV1 carries the mini-game result for the user.
	RoundScoreReportedV1 = "tournament.round.score.reported.v1"
	// RoundCutRequestedV1 fires after the cut reveal delay.
	RoundCutRequestedV1 = "tournament.round.cut.requested.v1"
	// RoundAdvanceRequestedV1 fires when the post-round wait expires.
	RoundAdvanceRequestedV1 = "tournament.round.advance.requested.v1"
	// RoundResolvedV1 is published after every cut, suffixed with the session id.
	RoundResolvedV1 = "tournament.round.resolved.v1"
	// TournamentFinishedV1 is published once per tournament with its payout.
	TournamentFinishedV1 = "tournament.finished.v1"
)

// TimerPayloadV1 is carried by every scheduler-driven event. Phase and Round
// describe the state the timer was armed in, so late timers can be dropped.
type TimerPayloadV1 struct {
	SessionID string                 `json:"session_id"`
	Phase     tournamentdomain.Phase `json:"phase"`
	Round     int                    `json:"round"`
}

// RoundScoreReportedPayloadV1 is the mini-game's completion message. A nil
// Score asks for the fallback draw.
type RoundScoreReportedPayloadV1 struct {
	SessionID string `json:"session_id"`
	Round     int    `json:"round"`
	Score     *int   `json:"score,omitempty"`
}

// RoundResolvedPayloadV1 announces the outcome of a cut.
type RoundResolvedPayloadV1 struct {
	SessionID string                       `json:"session_id"`
	AccountID string                       `json:"account_id"`
	Result    tournamentdomain.RoundResult `json:"result"`
}

// TournamentFinishedPayloadV1 is the explicit payout output of a tournament.
type TournamentFinishedPayloadV1 struct {
	SessionID    string                      `json:"session_id"`
	TournamentID string                      `json:"tournament_id"`
	AccountID    string                      `json:"account_id"`
	Variant      string                      `json:"variant"`
	BuyIn        float64                     `json:"buy_in"`
	PrizePool    float64                     `json:"prize_pool"`
	Winners      []tournamentdomain.PlayerID `json:"winners"`
	Share        float64                     `json:"share"`
	UserWon      bool                        `json:"user_won"`
	UserPayout   float64                     `json:"user_payout"`
}
