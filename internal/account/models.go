package account

import "time"

// StartingCash is credited to every account on first touch.
const StartingCash int64 = 1000

type Account struct {
	AccountID     int64      `gorm:"column:account_id;primaryKey;autoIncrement:false" json:"account_id"`
	Cash          int64      `gorm:"column:cash;not null" json:"cash"`
	Bank          int64      `gorm:"column:bank;not null" json:"bank"`
	LastClaimDate *time.Time `gorm:"column:last_claim_date;type:date" json:"last_claim_date,omitempty"`
	Version       int        `gorm:"column:version;not null;default:1" json:"-"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"-"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null" json:"-"`
}

func (Account) TableName() string { return "accounts" }

// Total is the account's holdings across both pockets.
func (a Account) Total() int64 {
	return a.Cash + a.Bank
}

func newAccount(id int64) Account {
	now := time.Now()
	return Account{
		AccountID: id,
		Cash:      StartingCash,
		Bank:      0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a Account) clone() Account {
	c := a
	if a.LastClaimDate != nil {
		d := *a.LastClaimDate
		c.LastClaimDate = &d
	}
	return c
}
