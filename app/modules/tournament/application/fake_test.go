package tournamentservice

import (
	"context"
	"sync"
	"time"

	"github.com/Black-And-White-Club/cutline/pkg/results"
)

// ------------------------
// Fake Wallet
// ------------------------

type FakeWallet struct {
	trace []string

	BalanceFunc func(ctx context.Context, accountID string) (float64, error)
	DebitFunc   func(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error)
}

func NewFakeWallet() *FakeWallet {
	return &FakeWallet{trace: []string{}}
}

func (f *FakeWallet) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeWallet) Balance(ctx context.Context, accountID string) (float64, error) {
	f.record("Balance")
	if f.BalanceFunc != nil {
		return f.BalanceFunc(ctx, accountID)
	}
	return 1000, nil
}

func (f *FakeWallet) Debit(ctx context.Context, accountID string, amount float64, reference string) (results.OperationResult[float64, error], error) {
	f.record("Debit")
	if f.DebitFunc != nil {
		return f.DebitFunc(ctx, accountID, amount, reference)
	}
	return results.SuccessResult[float64, error](1000 - amount), nil
}

func (f *FakeWallet) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Wallet = (*FakeWallet)(nil)

// ------------------------
// Fake Scheduler
// ------------------------

type scheduled struct {
	SessionID string
	Delay     time.Duration
	Topic     string
	Payload   any
}

type FakeScheduler struct {
	mu        sync.Mutex
	trace     []string
	Scheduled []scheduled
	Cancelled []string

	ScheduleFunc func(ctx context.Context, sessionID string, delay time.Duration, topic string, payload any) error
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{trace: []string{}}
}

func (f *FakeScheduler) Schedule(ctx context.Context, sessionID string, delay time.Duration, topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "Schedule:"+topic)
	if f.ScheduleFunc != nil {
		if err := f.ScheduleFunc(ctx, sessionID, delay, topic, payload); err != nil {
			return err
		}
	}
	f.Scheduled = append(f.Scheduled, scheduled{SessionID: sessionID, Delay: delay, Topic: topic, Payload: payload})
	return nil
}

func (f *FakeScheduler) Cancel(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "Cancel")
	f.Cancelled = append(f.Cancelled, sessionID)
}

func (f *FakeScheduler) Last() scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Scheduled) == 0 {
		return scheduled{}
	}
	return f.Scheduled[len(f.Scheduled)-1]
}

func (f *FakeScheduler) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Scheduler = (*FakeScheduler)(nil)
