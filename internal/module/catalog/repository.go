package catalog

import (
	"context"
	"errors"

	"github.com/simp-lee/bglist/internal/domain"
	"github.com/simp-lee/bglist/internal/pkg"
	"github.com/simp-lee/bglist/internal/query"
	"gorm.io/gorm"
)

// Store is the persistence contract the responders and mutations rely on.
type Store[T any] interface {
	Count(ctx context.Context, q query.CountQuery) (int, error)
	Find(ctx context.Context, q query.PageQuery) ([]T, error)
	GetByID(ctx context.Context, id int) (*T, error)
	Update(ctx context.Context, id int, apply func(*T)) (*T, error)
	Delete(ctx context.Context, ids []int) ([]T, error)
}

// repository implements Store using GORM. T is one of the catalog entities.
type repository[T any] struct {
	db *gorm.DB
}

// NewRepository creates a Store for entity type T backed by the given GORM database.
func NewRepository[T any](db *gorm.DB) Store[T] {
	return &repository[T]{db: db}
}

// Count returns the number of rows matching the filter.
func (r *repository[T]) Count(ctx context.Context, q query.CountQuery) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).
		Scopes(pkg.Filter(q.Filter)).
		Count(&total).Error; err != nil {
		return 0, mapError(err)
	}
	return int(total), nil
}

// Find returns one filtered, ordered page of rows.
func (r *repository[T]) Find(ctx context.Context, q query.PageQuery) ([]T, error) {
	rows := []T{}
	if err := r.db.WithContext(ctx).Model(new(T)).
		Scopes(
			pkg.Filter(q.Filter),
			pkg.Sort(q.Order),
			pkg.Paginate(q.Skip, q.Take),
		).
		Find(&rows).Error; err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

// GetByID retrieves a row by its primary key.
func (r *repository[T]) GetByID(ctx context.Context, id int) (*T, error) {
	var v T
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &v, nil
}

// Update loads the row, applies the changes and saves it in one transaction.
// The last modified date is refreshed by GORM on save.
func (r *repository[T]) Update(ctx context.Context, id int, apply func(*T)) (*T, error) {
	var v T
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.First(&v, id).Error; err != nil {
			return err
		}
		apply(&v)
		return tx.Save(&v).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &v, nil
}

// Delete removes every existing row among ids in one transaction and returns
// the removed rows. Unknown ids are ignored.
func (r *repository[T]) Delete(ctx context.Context, ids []int) ([]T, error) {
	var rows []T
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Find(&rows, ids).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Delete(&rows).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

// mapError converts GORM errors to domain errors. Anything but a missing row
// means the store could not serve the request.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.NewAppError(domain.CodeUnavailable, "store unavailable", err)
}
