package leaderboard

import (
	"context"

	"go.uber.org/zap"

	"casino_ledger/internal/account"
	"casino_ledger/internal/metrics"
)

// Cache stores ranked pages keyed by their size. A miss returns ok=false.
type Cache interface {
	Get(ctx context.Context, n int) (entries []Entry, ok bool, err error)
	Set(ctx context.Context, n int, entries []Entry) error
}

type Service struct {
	repo  account.AccountRepository
	cache Cache
	log   *zap.Logger
}

// NewService builds the reporter. cache may be nil.
func NewService(repo account.AccountRepository, cache Cache, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// TopN returns the n richest accounts by cash+bank, ties by ascending id.
func (s *Service) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}

	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx, n)
		switch {
		case err != nil:
			metrics.LeaderboardCache.WithLabelValues("error").Inc()
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		case ok:
			metrics.LeaderboardCache.WithLabelValues("hit").Inc()
			return entries, nil
		default:
			metrics.LeaderboardCache.WithLabelValues("miss").Inc()
		}
	}

	accounts, err := s.repo.List(ctx, n)
	if err != nil {
		s.log.Error("leaderboard query failed", zap.Error(err))
		return nil, err
	}

	entries := make([]Entry, 0, len(accounts))
	for i, acc := range accounts {
		entries = append(entries, Entry{
			Rank:      i + 1,
			AccountID: acc.AccountID,
			Cash:      acc.Cash,
			Bank:      acc.Bank,
			Total:     acc.Total(),
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, n, entries); err != nil {
			s.log.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}
