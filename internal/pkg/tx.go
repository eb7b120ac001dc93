package pkg

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// WithTx runs fn inside one transaction bound to ctx. The transaction is
// committed when fn returns nil and rolled back when fn errors or panics;
// a panic is re-raised after the rollback. A failed rollback is joined to the
// error fn returned, so errors.Is still matches the original cause.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	if db == nil {
		return errors.New("database is nil")
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, gorm.ErrInvalidTransaction) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
