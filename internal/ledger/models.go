package ledger

import (
	"time"

	"casino_ledger/internal/account"
)

// DailyStipend is credited to cash by a successful daily claim.
const DailyStipend int64 = 500

type Balance struct {
	AccountID int64 `json:"account_id"`
	Cash      int64 `json:"cash"`
	Bank      int64 `json:"bank"`
	Total     int64 `json:"total"`
}

type ClaimResult struct {
	Balance
	Credited  int64     `json:"credited"`
	ClaimedOn time.Time `json:"claimed_on"`
}

func balanceOf(acc *account.Account) Balance {
	return Balance{
		AccountID: acc.AccountID,
		Cash:      acc.Cash,
		Bank:      acc.Bank,
		Total:     acc.Total(),
	}
}

// utcDate truncates t to its UTC calendar date.
func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return utcDate(a).Equal(utcDate(b))
}
