package tournamentmetrics

import (
	"context"
	"time"
)

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() TournamentMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordBuyIn(context.Context, string, float64)                           {}
func (noop) RecordRoundResolved(context.Context, string, int, int, bool)            {}
func (noop) RecordTournamentFinished(context.Context, string, int, bool, float64)   {}
func (noop) RecordStaleEvent(context.Context, string)                               {}
