package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStorage         = errors.New("storage unavailable")
	ErrNegativePocket  = errors.New("pocket would go negative")
	ErrVersionConflict = errors.New("account version conflict")
)

// TransformFunc mutates the account in place. Returning an error discards the
// mutation and the error is handed back to the caller unchanged.
type TransformFunc func(acc *Account) error

type AccountRepository interface {
	GetOrCreate(ctx context.Context, accountID int64) (*Account, error)
	Apply(ctx context.Context, accountID int64, fn TransformFunc) (*Account, error)
	List(ctx context.Context, limit int) ([]Account, error)
	Ping(ctx context.Context) error
}

type AccountRepositoryImpl struct {
	db      *gorm.DB
	locks   *keyedLocker
	timeout time.Duration
}

func NewAccountRepositoryImpl(db *gorm.DB, timeout time.Duration) *AccountRepositoryImpl {
	return &AccountRepositoryImpl{
		db:      db,
		locks:   newKeyedLocker(),
		timeout: timeout,
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Account{}); err != nil {
		return fmt.Errorf("migrate accounts: %w", err)
	}
	return nil
}

// scope detaches the call from caller cancellation so a started transaction
// finishes or rolls back on its own, bounded by the store timeout.
func (r *AccountRepositoryImpl) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
}

func (r *AccountRepositoryImpl) GetOrCreate(ctx context.Context, accountID int64) (*Account, error) {
	var acc Account
	err := r.withAccount(ctx, accountID, func(tx *gorm.DB, current *Account) error {
		acc = current.clone()
		return nil
	})
	if err != nil {
		return nil, storageError("get account", accountID, err)
	}
	return &acc, nil
}

// Apply runs fn against the current state of the account and commits the
// result. Calls on the same id are linearized; a failing fn leaves the stored
// account untouched and its error is returned with the unchanged account.
func (r *AccountRepositoryImpl) Apply(ctx context.Context, accountID int64, fn TransformFunc) (*Account, error) {
	var result Account
	var fnErr error

	err := r.withAccount(ctx, accountID, func(tx *gorm.DB, current *Account) error {
		next := current.clone()
		if fnErr = fn(&next); fnErr == nil && (next.Cash < 0 || next.Bank < 0) {
			fnErr = ErrNegativePocket
		}
		if fnErr != nil {
			result = current.clone()
			return fnErr
		}

		now := time.Now()
		res := tx.Model(&Account{}).
			Where("account_id = ? AND version = ?", current.AccountID, current.Version).
			Updates(map[string]interface{}{
				"cash":            next.Cash,
				"bank":            next.Bank,
				"last_claim_date": next.LastClaimDate,
				"version":         gorm.Expr("version + 1"),
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		next.Version = current.Version + 1
		next.UpdatedAt = now
		result = next
		return nil
	})
	if fnErr != nil {
		return &result, fnErr
	}
	if err != nil {
		return nil, storageError("apply", accountID, err)
	}
	return &result, nil
}

func (r *AccountRepositoryImpl) List(ctx context.Context, limit int) ([]Account, error) {
	if limit <= 0 {
		return []Account{}, nil
	}

	ctx, cancel := r.scope(ctx)
	defer cancel()

	accounts := []Account{}
	err := r.db.WithContext(ctx).
		Order("cash + bank DESC").
		Order("account_id ASC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", ErrStorage, err)
	}
	return accounts, nil
}

func (r *AccountRepositoryImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// withAccount holds the per-id lock and a database transaction with the
// account row locked, creating the row with defaults if it does not exist.
func (r *AccountRepositoryImpl) withAccount(ctx context.Context, accountID int64, fn func(tx *gorm.DB, current *Account) error) error {
	ctx, cancel := r.scope(ctx)
	defer cancel()

	unlock, err := r.locks.Lock(ctx, accountID)
	if err != nil {
		return fmt.Errorf("wait for account lock: %w", err)
	}
	defer unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.lockOrCreate(tx, accountID)
		if err != nil {
			return err
		}
		return fn(tx, current)
	})
}

func (r *AccountRepositoryImpl) lockOrCreate(tx *gorm.DB, accountID int64) (*Account, error) {
	acc, found, err := r.selectForUpdate(tx, accountID)
	if err != nil || found {
		return acc, err
	}

	seed := newAccount(accountID)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	acc, found, err = r.selectForUpdate(tx, accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("account %d missing after create", accountID)
	}
	return acc, nil
}

func (r *AccountRepositoryImpl) selectForUpdate(tx *gorm.DB, accountID int64) (*Account, bool, error) {
	var acc Account
	q := tx
	// sqlite serializes writers itself and has no row locks.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	res := q.Where("account_id = ?", accountID).
		Limit(1).
		Find(&acc)
	if res.Error != nil {
		return nil, false, fmt.Errorf("lock account: %w", res.Error)
	}
	return &acc, res.RowsAffected > 0, nil
}

func storageError(op string, accountID int64, err error) error {
	return fmt.Errorf("%w: %s account %d: %v", ErrStorage, op, accountID, err)
}
