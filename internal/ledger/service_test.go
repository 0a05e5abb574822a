package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"casino_ledger/internal/account"
	"casino_ledger/internal/db/dbtest"
)

func setUpService(t *testing.T) (*Service, *account.AccountRepositoryImpl) {
	t.Helper()
	gdb := dbtest.Open(t)
	require.NoError(t, account.Migrate(gdb))
	repo := account.NewAccountRepositoryImpl(gdb, 30*time.Second)
	return NewService(repo, zap.NewNop()), repo
}

func TestBalanceCreatesAccount(t *testing.T) {
	service, _ := setUpService(t)

	b, err := service.Balance(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, Balance{AccountID: 100, Cash: 1000, Bank: 0, Total: 1000}, *b)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	service, _ := setUpService(t)
	ctx := context.Background()

	b, err := service.Deposit(ctx, 1, 400)
	require.NoError(t, err)
	require.Equal(t, int64(600), b.Cash)
	require.Equal(t, int64(400), b.Bank)
	require.Equal(t, int64(1000), b.Total)

	b, err = service.Withdraw(ctx, 1, 400)
	require.NoError(t, err)
	require.Equal(t, int64(1000), b.Cash)
	require.Equal(t, int64(0), b.Bank)
}

func TestInvalidAmounts(t *testing.T) {
	service, _ := setUpService(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -5} {
		_, err := service.Deposit(ctx, 1, amount)
		require.ErrorIs(t, err, ErrInvalidAmount)
		_, err = service.Withdraw(ctx, 1, amount)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}

	b, err := service.Balance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1000), b.Cash)
	require.Equal(t, int64(0), b.Bank)
}

func TestInsufficientFunds(t *testing.T) {
	service, _ := setUpService(t)
	ctx := context.Background()

	_, err := service.Deposit(ctx, 1, 1001)
	require.ErrorIs(t, err, ErrInsufficientCash)

	_, err = service.Withdraw(ctx, 1, 1)
	require.ErrorIs(t, err, ErrInsufficientBank)

	b, err := service.Balance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, Balance{AccountID: 1, Cash: 1000, Bank: 0, Total: 1000}, *b)
}

func TestClaimDailyOncePerDay(t *testing.T) {
	service, _ := setUpService(t)
	ctx := context.Background()
	morning := time.Date(2026, 10, 15, 0, 5, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 15, 23, 55, 0, 0, time.UTC)

	res, err := service.ClaimDaily(ctx, 1, morning)
	require.NoError(t, err)
	require.Equal(t, DailyStipend, res.Credited)
	require.Equal(t, int64(1500), res.Cash)

	_, err = service.ClaimDaily(ctx, 1, evening)
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	b, err := service.Balance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1500), b.Cash)

	res, err = service.ClaimDaily(ctx, 1, morning.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2000), res.Cash)
}

func TestClaimDailyUsesUTCDate(t *testing.T) {
	service, _ := setUpService(t)
	ctx := context.Background()
	tz := time.FixedZone("UTC+3", 3*60*60)

	// 01:00 local on the 16th is still the 15th in UTC.
	_, err := service.ClaimDaily(ctx, 1, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = service.ClaimDaily(ctx, 1, time.Date(2026, 10, 16, 1, 0, 0, 0, tz))
	require.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestConcurrentDepositWithdrawPairs(t *testing.T) {
	service, _ := setUpService(t)
	ctx := context.Background()

	pairs := 10000
	if testing.Short() {
		pairs = 500
	}

	var wg sync.WaitGroup
	var deposited, withdrawn atomic.Int64
	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := service.Deposit(ctx, 77, 1); err == nil {
				deposited.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := service.Withdraw(ctx, 77, 1); err == nil {
				withdrawn.Add(1)
			}
		}()
	}
	wg.Wait()

	b, err := service.Balance(ctx, 77)
	require.NoError(t, err)
	require.Equal(t, int64(1000), b.Total)
	require.Equal(t, deposited.Load()-withdrawn.Load(), b.Bank)
	require.Equal(t, 1000-deposited.Load()+withdrawn.Load(), b.Cash)
}

type failingRepo struct{ account.AccountRepository }

func (failingRepo) GetOrCreate(ctx context.Context, id int64) (*account.Account, error) {
	return nil, fmt.Errorf("%w: connection refused", account.ErrStorage)
}

func (failingRepo) Apply(ctx context.Context, id int64, fn account.TransformFunc) (*account.Account, error) {
	return nil, fmt.Errorf("%w: connection refused", account.ErrStorage)
}

func TestStorageErrorsPropagate(t *testing.T) {
	service := NewService(failingRepo{}, zap.NewNop())
	ctx := context.Background()

	_, err := service.Balance(ctx, 1)
	require.ErrorIs(t, err, account.ErrStorage)
	_, err = service.Deposit(ctx, 1, 10)
	require.ErrorIs(t, err, account.ErrStorage)
	_, err = service.ClaimDaily(ctx, 1, time.Now())
	require.ErrorIs(t, err, account.ErrStorage)
}
