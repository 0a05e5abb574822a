package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino_ledger/internal/db/dbtest"
)

var errRejected = errors.New("rejected")

func setUpRepo(t *testing.T) *AccountRepositoryImpl {
	t.Helper()
	gdb := dbtest.Open(t)
	require.NoError(t, Migrate(gdb))
	return NewAccountRepositoryImpl(gdb, 5*time.Second)
}

func TestGetOrCreateDefaults(t *testing.T) {
	repo := setUpRepo(t)

	acc, err := repo.GetOrCreate(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), acc.AccountID)
	require.Equal(t, StartingCash, acc.Cash)
	require.Equal(t, int64(0), acc.Bank)
	require.Nil(t, acc.LastClaimDate)

	again, err := repo.GetOrCreate(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, acc.Cash, again.Cash)
	require.Equal(t, acc.Version, again.Version)
}

func TestApplyCommitsOnSuccess(t *testing.T) {
	repo := setUpRepo(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	acc, err := repo.Apply(ctx, 7, func(a *Account) error {
		a.Cash -= 300
		a.Bank += 300
		a.LastClaimDate = &day
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(700), acc.Cash)
	require.Equal(t, int64(300), acc.Bank)

	stored, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(700), stored.Cash)
	require.Equal(t, int64(300), stored.Bank)
	require.NotNil(t, stored.LastClaimDate)
	require.Equal(t, "2026-10-15", stored.LastClaimDate.UTC().Format(time.DateOnly))
	require.Equal(t, acc.Version, stored.Version)
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	repo := setUpRepo(t)
	ctx := context.Background()

	acc, err := repo.Apply(ctx, 9, func(a *Account) error {
		a.Cash = 1
		return errRejected
	})
	require.ErrorIs(t, err, errRejected)
	require.NotNil(t, acc)
	require.Equal(t, StartingCash, acc.Cash)

	stored, err := repo.GetOrCreate(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, StartingCash, stored.Cash)
}

func TestApplyRejectsNegativePockets(t *testing.T) {
	repo := setUpRepo(t)

	_, err := repo.Apply(context.Background(), 3, func(a *Account) error {
		a.Bank -= 1
		return nil
	})
	require.ErrorIs(t, err, ErrNegativePocket)

	stored, err := repo.GetOrCreate(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(0), stored.Bank)
}

func TestApplyIgnoresCallerCancellation(t *testing.T) {
	repo := setUpRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acc, err := repo.Apply(ctx, 5, func(a *Account) error {
		a.Cash += 10
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, StartingCash+10, acc.Cash)
}

func TestApplyTimesOutWhenAccountIsBusy(t *testing.T) {
	gdb := dbtest.Open(t)
	require.NoError(t, Migrate(gdb))
	repo := NewAccountRepositoryImpl(gdb, 50*time.Millisecond)

	unlock, err := repo.locks.Lock(context.Background(), 11)
	require.NoError(t, err)
	defer unlock()

	_, err = repo.Apply(context.Background(), 11, func(a *Account) error { return nil })
	require.ErrorIs(t, err, ErrStorage)
}

func TestConcurrentApplyNoLostUpdates(t *testing.T) {
	repo := setUpRepo(t)
	ctx := context.Background()

	const workers = 200
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Apply(ctx, 1, func(a *Account) error {
				a.Cash++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	acc, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, StartingCash+workers, acc.Cash)
	require.Zero(t, repo.locks.size())
}

func TestListOrdersByTotalThenID(t *testing.T) {
	repo := setUpRepo(t)
	ctx := context.Background()

	set := func(id, cash, bank int64) {
		_, err := repo.Apply(ctx, id, func(a *Account) error {
			a.Cash, a.Bank = cash, bank
			return nil
		})
		require.NoError(t, err)
	}
	set(30, 100, 400)
	set(10, 500, 0)
	set(20, 900, 100)

	accounts, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	require.Equal(t, int64(20), accounts[0].AccountID)
	require.Equal(t, int64(10), accounts[1].AccountID)
	require.Equal(t, int64(30), accounts[2].AccountID)

	top, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestListEmpty(t *testing.T) {
	repo := setUpRepo(t)

	accounts, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, accounts)

	accounts, err = repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestPing(t *testing.T) {
	repo := setUpRepo(t)
	require.NoError(t, repo.Ping(context.Background()))
}
