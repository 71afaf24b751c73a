package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	tournamentevents "github.com/Black-And-White-Club/cutline/app/modules/tournament/events"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/cutline/pkg/results"
	"github.com/google/uuid"
)

func newSessionID() string {
	return uuid.NewString()
}

// ListContests returns every variant's contest tiers and the caller's balance.
func (s *TournamentService) ListContests(ctx context.Context, accountID string) (results.OperationResult[ContestList, error], error) {
	return withTelemetry(s, ctx, "ListContests", accountID, func(ctx context.Context) (results.OperationResult[ContestList, error], error) {
		balance, err := s.wallet.Balance(ctx, accountID)
		if err != nil {
			return results.OperationResult[ContestList, error]{}, fmt.Errorf("failed to read balance: %w", err)
		}

		names := make([]string, 0, len(s.settings.Variants))
		for name := range s.settings.Variants {
			names = append(names, name)
		}
		slices.Sort(names)

		list := ContestList{Balance: balance}
		for _, name := range names {
			v := s.settings.Variants[name]
			vc := VariantContests{Variant: name, Entrants: v.Entrants, TotalRounds: v.TotalRounds}
			for _, buyIn := range s.settings.BuyInOptions {
				vc.Options = append(vc.Options, ContestOption{
					BuyIn:     buyIn,
					PrizePool: tournamentdomain.PrizePool(v.Entrants, buyIn, v.HouseRake),
				})
			}
			list.Variants = append(list.Variants, vc)
		}
		return results.SuccessResult[ContestList, error](list), nil
	})
}

// JoinContest opens a session waiting for its field and debits the buy-in.
// A failed debit removes the session again.
func (s *TournamentService) JoinContest(ctx context.Context, req JoinContestRequest) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "JoinContest", req.AccountID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		v, ok := s.variant(req.Variant)
		if !ok {
			return results.FailureResult[SessionView, error](fmt.Errorf("%w: %q", ErrUnknownVariant, req.Variant)), nil
		}
		if !slices.Contains(s.settings.BuyInOptions, req.BuyIn) {
			return results.FailureResult[SessionView, error](fmt.Errorf("%w: %v", ErrInvalidBuyIn, req.BuyIn)), nil
		}
		if err := v.Validate(); err != nil {
			return results.OperationResult[SessionView, error]{}, fmt.Errorf("variant %s: %w", v.Name, err)
		}

		sessionID := s.newID()
		now := s.now()
		sess := &tournamentdb.Session{
			ID:        sessionID,
			AccountID: req.AccountID,
			Variant:   v.Name,
			BuyIn:     req.BuyIn,
			Phase:     tournamentdomain.PhaseWaitingForField,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, sess); err != nil {
			return results.OperationResult[SessionView, error]{}, fmt.Errorf("failed to store session: %w", err)
		}

		// Debit last: a session that cannot be stored or armed is never charged.
		delay := s.settings.FieldFillInterval * time.Duration(v.Entrants)
		if err := s.arm(ctx, sess, delay, tournamentevents.FieldReadyV1); err != nil {
			s.discard(ctx, sessionID)
			return results.OperationResult[SessionView, error]{}, err
		}

		debit, err := s.wallet.Debit(ctx, req.AccountID, req.BuyIn, sessionID)
		if err != nil {
			s.discard(ctx, sessionID)
			return results.OperationResult[SessionView, error]{}, fmt.Errorf("failed to debit buy-in: %w", err)
		}
		if debit.IsFailure() {
			s.discard(ctx, sessionID)
			return results.FailureResult[SessionView, error](*debit.Failure), nil
		}
		s.metrics.RecordBuyIn(ctx, v.Name, req.BuyIn)

		s.logger.InfoContext(ctx, "Contest joined",
			slog.String("session_id", sessionID),
			slog.String("variant", v.Name),
			slog.Float64("buy_in", req.BuyIn),
		)
		return results.SuccessResult[SessionView, error](newSessionView(sess, v)), nil
	})
}

// GetSession returns the current view of a session.
func (s *TournamentService) GetSession(ctx context.Context, sessionID string) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "GetSession", sessionID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		sess, err := s.repo.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return results.FailureResult[SessionView, error](fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
			}
			return results.OperationResult[SessionView, error]{}, err
		}
		return results.SuccessResult[SessionView, error](s.view(sess)), nil
	})
}

// StartField seats the simulated field and opens round 1.
func (s *TournamentService) StartField(ctx context.Context, sessionID string) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "StartField", sessionID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		return mutate(s, ctx, sessionID, func(sess *tournamentdb.Session) error {
			if err := expectPhase(sess, tournamentdomain.PhaseWaitingForField, 0); err != nil {
				return err
			}
			v, ok := s.variant(sess.Variant)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownVariant, sess.Variant)
			}
			t, err := tournamentdomain.Start(tournamentdomain.StartCommand{
				ID:      sess.ID,
				Variant: v,
				BuyIn:   sess.BuyIn,
			}, s.seeds)
			if err != nil {
				return fmt.Errorf("failed to start tournament: %w", err)
			}
			sess.Tournament = t
			if err := transition(sess, tournamentdomain.PhaseRoundActive); err != nil {
				return err
			}
			return s.arm(ctx, sess, s.settings.LobbyTimeout, tournamentevents.RoundStartRequestedV1)
		}, s.view)
	})
}

// BeginRound moves a round from the lobby into play. When the user is
// already out, the round is simulated straight away.
func (s *TournamentService) BeginRound(ctx context.Context, sessionID string, round int) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "BeginRound", sessionID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		return mutate(s, ctx, sessionID, func(sess *tournamentdb.Session) error {
			if err := expectPhase(sess, tournamentdomain.PhaseRoundActive, round); err != nil {
				return err
			}
			if err := transition(sess, tournamentdomain.PhasePlaying); err != nil {
				return err
			}

			user, _ := sess.Tournament.User()
			if user.IsEliminated {
				return s.score(ctx, sess, nil)
			}
			s.scheduler.Cancel(sess.ID)
			return nil
		}, s.view)
	})
}

// ReportScore records the user's round result; a nil score asks for the
// fallback draw.
func (s *TournamentService) ReportScore(ctx context.Context, sessionID string, round int, score *int) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "ReportScore", sessionID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		return mutate(s, ctx, sessionID, func(sess *tournamentdb.Session) error {
			if err := expectPhase(sess, tournamentdomain.PhasePlaying, round); err != nil {
				return err
			}
			return s.score(ctx, sess, score)
		}, s.view)
	})
}

func (s *TournamentService) score(ctx context.Context, sess *tournamentdb.Session, userScore *int) error {
	src := s.scores(sess.Tournament.Variant.Scores)
	t, err := tournamentdomain.ReportRoundScore(sess.Tournament, userScore, src)
	if err != nil {
		return fmt.Errorf("round %d scoring: %w", sess.Tournament.CurrentRound, err)
	}
	sess.Tournament = t
	if err := transition(sess, tournamentdomain.PhaseScoring); err != nil {
		return err
	}
	return s.arm(ctx, sess, s.settings.CutRevealDelay, tournamentevents.RoundCutRequestedV1)
}

// ResolveRound applies the cut and either finishes the tournament or opens
// the post-round review. A cut request for the round that finished the
// tournament returns the recorded outcome again so its events can be
// re-published.
func (s *TournamentService) ResolveRound(ctx context.Context, sessionID string, round int) (results.OperationResult[RoundOutcome, error], error) {
	return withTelemetry(s, ctx, "ResolveRound", sessionID, func(ctx context.Context) (results.OperationResult[RoundOutcome, error], error) {
		var (
			roundResult tournamentdomain.RoundResult
			replay      bool
		)
		res, err := mutate(s, ctx, sessionID, func(sess *tournamentdb.Session) error {
			if rr, ok := finishedAt(sess, round); ok {
				roundResult = rr
				replay = true
				return nil
			}
			if err := expectPhase(sess, tournamentdomain.PhaseScoring, round); err != nil {
				return err
			}
			t, rr, err := tournamentdomain.ApplyElimination(sess.Tournament)
			if err != nil {
				return fmt.Errorf("round %d cut: %w", sess.Tournament.CurrentRound, err)
			}
			sess.Tournament = t
			sess.History = append(sess.History, rr)
			roundResult = rr

			if t.Finished() {
				if err := transition(sess, tournamentdomain.PhaseFinished); err != nil {
					return err
				}
				s.scheduler.Cancel(sess.ID)
				return nil
			}
			if err := transition(sess, tournamentdomain.PhaseEliminationReview); err != nil {
				return err
			}
			return s.arm(ctx, sess, s.settings.PostRoundWait, tournamentevents.RoundAdvanceRequestedV1)
		}, s.view)
		if err != nil || res.IsFailure() {
			return results.OperationResult[RoundOutcome, error]{Failure: res.Failure}, err
		}

		view := *res.Success
		if replay {
			s.logger.InfoContext(ctx, "Replaying finished round",
				slog.String("session_id", sessionID),
				slog.Int("round", roundResult.Round),
			)
			return results.SuccessResult[RoundOutcome, error](RoundOutcome{
				Session:  view,
				Round:    roundResult,
				Result:   view.Result,
				Replayed: true,
			}), nil
		}
		s.metrics.RecordRoundResolved(ctx, view.Variant, roundResult.Round, len(roundResult.Eliminated), roundResult.TieDetected)
		if view.Result != nil {
			s.metrics.RecordTournamentFinished(ctx, view.Variant, len(view.Result.Winners), view.Result.UserWon, view.Result.UserPayout)
			s.logger.InfoContext(ctx, "Tournament finished",
				slog.String("session_id", sessionID),
				slog.Int("final_round", view.Result.FinalRound),
				slog.Int("winners", len(view.Result.Winners)),
				slog.Bool("user_won", view.Result.UserWon),
			)
		}
		return results.SuccessResult[RoundOutcome, error](RoundOutcome{
			Session: view,
			Round:   roundResult,
			Result:  view.Result,
		}), nil
	})
}

// AdvanceRound ends the post-round review and opens the next round's lobby.
func (s *TournamentService) AdvanceRound(ctx context.Context, sessionID string, round int) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "AdvanceRound", sessionID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		return mutate(s, ctx, sessionID, func(sess *tournamentdb.Session) error {
			if err := expectPhase(sess, tournamentdomain.PhaseEliminationReview, round); err != nil {
				return err
			}
			t, err := tournamentdomain.AdvanceRound(sess.Tournament)
			if err != nil {
				return err
			}
			sess.Tournament = t
			if err := transition(sess, tournamentdomain.PhaseRoundActive); err != nil {
				return err
			}
			return s.arm(ctx, sess, s.settings.LobbyTimeout, tournamentevents.RoundStartRequestedV1)
		}, s.view)
	})
}

// ExitToLobby abandons a session. The buy-in is not refunded.
func (s *TournamentService) ExitToLobby(ctx context.Context, sessionID string) (results.OperationResult[SessionView, error], error) {
	return withTelemetry(s, ctx, "ExitToLobby", sessionID, func(ctx context.Context) (results.OperationResult[SessionView, error], error) {
		sess, err := s.repo.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return results.FailureResult[SessionView, error](fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
			}
			return results.OperationResult[SessionView, error]{}, err
		}
		s.scheduler.Cancel(sessionID)
		if err := s.repo.Delete(ctx, sessionID); err != nil && !errors.Is(err, tournamentdb.ErrNotFound) {
			return results.OperationResult[SessionView, error]{}, err
		}
		return results.SuccessResult[SessionView, error](s.view(sess)), nil
	})
}

// discard drops a session that never got going, along with its timer.
func (s *TournamentService) discard(ctx context.Context, sessionID string) {
	s.scheduler.Cancel(sessionID)
	if err := s.repo.Delete(ctx, sessionID); err != nil && !errors.Is(err, tournamentdb.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Failed to discard session",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *TournamentService) view(sess *tournamentdb.Session) SessionView {
	v, _ := s.variant(sess.Variant)
	if len(sess.Tournament.Players) > 0 {
		v = sess.Tournament.Variant
	}
	return newSessionView(sess, v)
}

// arm schedules the session's next timer for its current phase and round.
func (s *TournamentService) arm(ctx context.Context, sess *tournamentdb.Session, delay time.Duration, topic string) error {
	payload := tournamentevents.TimerPayloadV1{
		SessionID: sess.ID,
		Phase:     sess.Phase,
		Round:     sess.Tournament.CurrentRound,
	}
	if err := s.scheduler.Schedule(ctx, sess.ID, delay, topic, payload); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", topic, err)
	}
	return nil
}

// finishedAt returns the final round's result when sess already finished at
// round.
func finishedAt(sess *tournamentdb.Session, round int) (tournamentdomain.RoundResult, bool) {
	if sess.Phase != tournamentdomain.PhaseFinished || len(sess.History) == 0 {
		return tournamentdomain.RoundResult{}, false
	}
	last := sess.History[len(sess.History)-1]
	if round != 0 && round != last.Round {
		return tournamentdomain.RoundResult{}, false
	}
	return last, true
}

// expectPhase rejects actions that do not match the session's phase, or that
// target a round other than the current one.
func expectPhase(sess *tournamentdb.Session, want tournamentdomain.Phase, round int) error {
	if round != 0 && round != sess.Tournament.CurrentRound {
		return fmt.Errorf("%w: round %d, session at round %d", ErrStaleEvent, round, sess.Tournament.CurrentRound)
	}
	if sess.Phase != want {
		return fmt.Errorf("%w: session is %s, need %s", ErrInvalidPhase, sess.Phase, want)
	}
	return nil
}

func transition(sess *tournamentdb.Session, to tournamentdomain.Phase) error {
	if !tournamentdomain.CanTransition(sess.Phase, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidPhase, sess.Phase, to)
	}
	sess.Phase = to
	return nil
}
