package tournamenthandlers

import (
	"context"

	tournamentservice "github.com/Black-And-White-Club/cutline/app/modules/tournament/application"
	"github.com/Black-And-White-Club/cutline/pkg/results"
)

// ------------------------
// Fake Tournament Service
// ------------------------

type viewResult = results.OperationResult[tournamentservice.SessionView, error]

type FakeTournamentService struct {
	trace []string

	ListContestsFunc        func(ctx context.Context, accountID string) (results.OperationResult[tournamentservice.ContestList, error], error)
	JoinContestFunc         func(ctx context.Context, req tournamentservice.JoinContestRequest) (viewResult, error)
	GetSessionFunc          func(ctx context.Context, sessionID string) (viewResult, error)
	StartFieldFunc          func(ctx context.Context, sessionID string) (viewResult, error)
	BeginRoundFunc          func(ctx context.Context, sessionID string, round int) (viewResult, error)
	ReportScoreFunc         func(ctx context.Context, sessionID string, round int, score *int) (viewResult, error)
	ResolveRoundFunc        func(ctx context.Context, sessionID string, round int) (results.OperationResult[tournamentservice.RoundOutcome, error], error)
	AdvanceRoundFunc        func(ctx context.Context, sessionID string, round int) (viewResult, error)
	ExitToLobbyFunc         func(ctx context.Context, sessionID string) (viewResult, error)
	RenderProgressChartFunc func(ctx context.Context, sessionID string) ([]byte, error)
	ExportStandingsFunc     func(ctx context.Context, sessionID string) ([]byte, error)
}

func NewFakeTournamentService() *FakeTournamentService {
	return &FakeTournamentService{trace: []string{}}
}

func (f *FakeTournamentService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTournamentService) ListContests(ctx context.Context, accountID string) (results.OperationResult[tournamentservice.ContestList, error], error) {
	f.record("ListContests")
	if f.ListContestsFunc != nil {
		return f.ListContestsFunc(ctx, accountID)
	}
	return results.SuccessResult[tournamentservice.ContestList, error](tournamentservice.ContestList{}), nil
}

func (f *FakeTournamentService) JoinContest(ctx context.Context, req tournamentservice.JoinContestRequest) (viewResult, error) {
	f.record("JoinContest")
	if f.JoinContestFunc != nil {
		return f.JoinContestFunc(ctx, req)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) GetSession(ctx context.Context, sessionID string) (viewResult, error) {
	f.record("GetSession")
	if f.GetSessionFunc != nil {
		return f.GetSessionFunc(ctx, sessionID)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) StartField(ctx context.Context, sessionID string) (viewResult, error) {
	f.record("StartField")
	if f.StartFieldFunc != nil {
		return f.StartFieldFunc(ctx, sessionID)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) BeginRound(ctx context.Context, sessionID string, round int) (viewResult, error) {
	f.record("BeginRound")
	if f.BeginRoundFunc != nil {
		return f.BeginRoundFunc(ctx, sessionID, round)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) ReportScore(ctx context.Context, sessionID string, round int, score *int) (viewResult, error) {
	f.record("ReportScore")
	if f.ReportScoreFunc != nil {
		return f.ReportScoreFunc(ctx, sessionID, round, score)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) ResolveRound(ctx context.Context, sessionID string, round int) (results.OperationResult[tournamentservice.RoundOutcome, error], error) {
	f.record("ResolveRound")
	if f.ResolveRoundFunc != nil {
		return f.ResolveRoundFunc(ctx, sessionID, round)
	}
	return results.OperationResult[tournamentservice.RoundOutcome, error]{}, nil
}

func (f *FakeTournamentService) AdvanceRound(ctx context.Context, sessionID string, round int) (viewResult, error) {
	f.record("AdvanceRound")
	if f.AdvanceRoundFunc != nil {
		return f.AdvanceRoundFunc(ctx, sessionID, round)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) ExitToLobby(ctx context.Context, sessionID string) (viewResult, error) {
	f.record("ExitToLobby")
	if f.ExitToLobbyFunc != nil {
		return f.ExitToLobbyFunc(ctx, sessionID)
	}
	return viewResult{}, nil
}

func (f *FakeTournamentService) RenderProgressChart(ctx context.Context, sessionID string) ([]byte, error) {
	f.record("RenderProgressChart")
	if f.RenderProgressChartFunc != nil {
		return f.RenderProgressChartFunc(ctx, sessionID)
	}
	return nil, nil
}

func (f *FakeTournamentService) ExportStandings(ctx context.Context, sessionID string) ([]byte, error) {
	f.record("ExportStandings")
	if f.ExportStandingsFunc != nil {
		return f.ExportStandingsFunc(ctx, sessionID)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ tournamentservice.Service = (*FakeTournamentService)(nil)
