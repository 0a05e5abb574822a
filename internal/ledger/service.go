package ledger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"casino_ledger/internal/account"
	"casino_ledger/internal/metrics"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInsufficientCash = errors.New("not enough cash")
	ErrInsufficientBank = errors.New("not enough coins in bank")
	ErrAlreadyClaimed   = errors.New("daily reward already claimed today")
)

type Service struct {
	repo account.AccountRepository
	log  *zap.Logger
}

func NewService(repo account.AccountRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Balance(ctx context.Context, accountID int64) (*Balance, error) {
	acc, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		s.log.Error("balance query failed", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, err
	}
	b := balanceOf(acc)
	return &b, nil
}

// Deposit moves amount from cash into the bank.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount int64) (*Balance, error) {
	return s.transfer(ctx, "deposit", accountID, amount, func(a *account.Account) error {
		if amount > a.Cash {
			return ErrInsufficientCash
		}
		a.Cash -= amount
		a.Bank += amount
		return nil
	})
}

// Withdraw moves amount from the bank back into cash.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount int64) (*Balance, error) {
	return s.transfer(ctx, "withdraw", accountID, amount, func(a *account.Account) error {
		if amount > a.Bank {
			return ErrInsufficientBank
		}
		a.Bank -= amount
		a.Cash += amount
		return nil
	})
}

func (s *Service) transfer(ctx context.Context, op string, accountID int64, amount int64, fn account.TransformFunc) (*Balance, error) {
	if amount <= 0 {
		metrics.LedgerOperations.WithLabelValues(op, metrics.ResultOf(ErrInvalidAmount)).Inc()
		return nil, ErrInvalidAmount
	}

	acc, err := s.repo.Apply(ctx, accountID, fn)
	metrics.LedgerOperations.WithLabelValues(op, metrics.ResultOf(err)).Inc()
	if err != nil {
		s.logFailure(op, accountID, err)
		return nil, err
	}

	s.log.Info(op+" committed",
		zap.Int64("account_id", accountID),
		zap.Int64("amount", amount),
		zap.Int64("cash", acc.Cash),
		zap.Int64("bank", acc.Bank),
	)
	b := balanceOf(acc)
	return &b, nil
}

// ClaimDaily credits the stipend once per UTC calendar day.
func (s *Service) ClaimDaily(ctx context.Context, accountID int64, today time.Time) (*ClaimResult, error) {
	day := utcDate(today)

	acc, err := s.repo.Apply(ctx, accountID, func(a *account.Account) error {
		if a.LastClaimDate != nil && sameDate(*a.LastClaimDate, day) {
			return ErrAlreadyClaimed
		}
		a.Cash += DailyStipend
		a.LastClaimDate = &day
		return nil
	})
	metrics.LedgerOperations.WithLabelValues("daily", metrics.ResultOf(err)).Inc()
	if err != nil {
		s.logFailure("daily", accountID, err)
		return nil, err
	}

	s.log.Info("daily claim committed",
		zap.Int64("account_id", accountID),
		zap.String("day", day.Format(time.DateOnly)),
		zap.Int64("cash", acc.Cash),
	)
	return &ClaimResult{
		Balance:   balanceOf(acc),
		Credited:  DailyStipend,
		ClaimedOn: day,
	}, nil
}

func (s *Service) logFailure(op string, accountID int64, err error) {
	if errors.Is(err, account.ErrStorage) {
		s.log.Error(op+" failed", zap.Int64("account_id", accountID), zap.Error(err))
		return
	}
	s.log.Debug(op+" rejected", zap.Int64("account_id", accountID), zap.Error(err))
}
