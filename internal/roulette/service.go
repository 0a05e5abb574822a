package roulette

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"casino_ledger/internal/account"
	"casino_ledger/internal/ledger"
	"casino_ledger/internal/metrics"
)

type Service struct {
	repo   account.AccountRepository
	drawer Drawer
	log    *zap.Logger
}

func NewService(repo account.AccountRepository, drawer Drawer, log *zap.Logger) *Service {
	if drawer == nil {
		drawer = UniformDrawer{}
	}
	return &Service{repo: repo, drawer: drawer, log: log}
}

// PlaceWager validates, draws and settles a wager in one account transaction.
// Affordability is checked before the selector so an unaffordable bet reports
// ledger.ErrInsufficientCash even when the selector is also malformed. The
// draw happens at most once and only after both checks pass.
func (s *Service) PlaceWager(ctx context.Context, accountID int64, selector string, amount int64) (*WagerResult, error) {
	if amount <= 0 {
		metrics.Wagers.WithLabelValues("", "invalid").Inc()
		return nil, ErrInvalidBet
	}
	sel, selErr := ParseSelector(selector)

	result := &WagerResult{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Selector:  sel.Text,
		Amount:    amount,
	}

	acc, err := s.repo.Apply(ctx, accountID, func(a *account.Account) error {
		if amount > a.Cash {
			return ledger.ErrInsufficientCash
		}
		if selErr != nil {
			return selErr
		}

		draw := s.drawer.Draw()
		won, multiple := sel.Resolve(draw)

		result.DrawNumber = draw
		result.DrawColor = ColorOf(draw)
		result.Won = won
		if won {
			result.GrossPayout = amount * multiple
			result.NetDelta = result.GrossPayout - amount
		} else {
			result.NetDelta = -amount
		}

		a.Cash += result.NetDelta
		return nil
	})
	if err != nil {
		s.recordFailure(accountID, sel, err)
		return nil, err
	}

	result.NewCash = acc.Cash
	metrics.Wagers.WithLabelValues(string(sel.Class), outcome(result.Won)).Inc()
	metrics.WagerNetDelta.Observe(float64(result.NetDelta))
	s.log.Info("wager settled",
		zap.String("wager_id", result.ID),
		zap.Int64("account_id", accountID),
		zap.String("selector", sel.Text),
		zap.Int64("amount", amount),
		zap.Int("draw", result.DrawNumber),
		zap.Bool("won", result.Won),
		zap.Int64("net_delta", result.NetDelta),
		zap.Int64("cash", result.NewCash),
	)
	return result, nil
}

func (s *Service) recordFailure(accountID int64, sel Selector, err error) {
	if errors.Is(err, account.ErrStorage) {
		metrics.Wagers.WithLabelValues(string(sel.Class), "error").Inc()
		s.log.Error("wager settlement failed",
			zap.Int64("account_id", accountID), zap.Error(err))
		return
	}
	metrics.Wagers.WithLabelValues(string(sel.Class), "invalid").Inc()
	s.log.Debug("wager rejected",
		zap.Int64("account_id", accountID), zap.Error(err))
}

func outcome(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}
