package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"casino_ledger/internal/account"
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	LedgerOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger operations by kind and result.",
	}, []string{"op", "result"})

	Wagers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roulette_wagers_total",
		Help: "Settled and rejected roulette wagers by selector class and outcome.",
	}, []string{"class", "outcome"})

	WagerNetDelta = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roulette_net_delta",
		Help:    "Net cash change applied by settled wagers.",
		Buckets: []float64{-10000, -1000, -100, -10, 0, 10, 100, 1000, 10000, 100000},
	})

	LeaderboardCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_cache_lookups_total",
		Help: "Leaderboard cache lookups by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(LedgerOperations, Wagers, WagerNetDelta, LeaderboardCache)
}

// ResultOf classifies an operation error for labelling.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, account.ErrStorage):
		return ResultError
	default:
		return ResultRejected
	}
}
