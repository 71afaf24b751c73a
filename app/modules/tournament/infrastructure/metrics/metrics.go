package tournamentmetrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TournamentMetrics records service operations and tournament outcomes.
type TournamentMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordBuyIn(ctx context.Context, variant string, amount float64)
	RecordRoundResolved(ctx context.Context, variant string, round, eliminated int, tie bool)
	RecordTournamentFinished(ctx context.Context, variant string, winners int, userWon bool, payout float64)
	RecordStaleEvent(ctx context.Context, topic string)
}

type prometheusMetrics struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	buyIns      *prometheus.CounterVec
	eliminated  *prometheus.CounterVec
	ties        *prometheus.CounterVec
	finished    *prometheus.CounterVec
	payouts     *prometheus.HistogramVec
	staleEvents *prometheus.CounterVec
}

// NewPrometheus registers the tournament collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (TournamentMetrics, error) {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "service", Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "service", Name: "operation_success_total",
			Help: "Service operations completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "service", Name: "operation_failures_total",
			Help: "Service operations that failed or panicked.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cutline", Subsystem: "service", Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		buyIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "tournament", Name: "buy_ins_total",
			Help: "Sum of buy-ins debited.",
		}, []string{"variant"}),
		eliminated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "tournament", Name: "players_eliminated_total",
			Help: "Players eliminated at a cut.",
		}, []string{"variant", "round"}),
		ties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "tournament", Name: "cutline_ties_total",
			Help: "Cuts where a tie kept more players than targeted.",
		}, []string{"variant"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "tournament", Name: "finished_total",
			Help: "Tournaments finished.",
		}, []string{"variant", "user_won"}),
		payouts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cutline", Subsystem: "tournament", Name: "user_payout",
			Help:    "Payout credited to the user per finished tournament.",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"variant"}),
		staleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cutline", Subsystem: "tournament", Name: "stale_events_total",
			Help: "Timer events dropped because the session had moved on.",
		}, []string{"topic"}),
	}

	for _, c := range []prometheus.Collector{
		m.attempts, m.successes, m.failures, m.durations,
		m.buyIns, m.eliminated, m.ties, m.finished, m.payouts, m.staleEvents,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordBuyIn(_ context.Context, variant string, amount float64) {
	m.buyIns.WithLabelValues(variant).Add(amount)
}

func (m *prometheusMetrics) RecordRoundResolved(_ context.Context, variant string, round, eliminated int, tie bool) {
	m.eliminated.WithLabelValues(variant, strconv.Itoa(round)).Add(float64(eliminated))
	if tie {
		m.ties.WithLabelValues(variant).Inc()
	}
}

func (m *prometheusMetrics) RecordTournamentFinished(_ context.Context, variant string, _ int, userWon bool, payout float64) {
	m.finished.WithLabelValues(variant, strconv.FormatBool(userWon)).Inc()
	m.payouts.WithLabelValues(variant).Observe(payout)
}

func (m *prometheusMetrics) RecordStaleEvent(_ context.Context, topic string) {
	m.staleEvents.WithLabelValues(topic).Inc()
}
