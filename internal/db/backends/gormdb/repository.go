package gormdb

import (
	"context"
	"errors"

	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"github.com/sampleprojects/postandcomments/internal/db/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository is the generic CRUD base shared by every entity repository.
type repository[T any] struct {
	db    *Database
	query *query.Builder

	// preload adds the associations loaded by FindByID and FindAll
	preload func(tx *gorm.DB) *gorm.DB
	// afterLoad runs on every entity returned by FindByID and FindAll
	afterLoad func(entity *T)
}

func (r *repository[T]) scoped(tx *gorm.DB) *gorm.DB {
	if r.preload != nil {
		return r.preload(tx)
	}
	return tx
}

func (r *repository[T]) loaded(entity *T) {
	if r.afterLoad != nil {
		r.afterLoad(entity)
	}
}

func (r *repository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := r.scoped(tx).First(&entity, id).Error; err != nil {
		return nil, translateError("find", err)
	}
	r.loaded(&entity)
	return &entity, nil
}

func (r *repository[T]) FindAll(ctx context.Context, q *interfaces.Query) ([]*T, error) {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}
	tx, err = r.query.Apply(r.scoped(tx.Model(new(T))), q)
	if err != nil {
		return nil, err
	}
	var out []*T
	if err := tx.Find(&out).Error; err != nil {
		return nil, translateError("find all", err)
	}
	for _, entity := range out {
		r.loaded(entity)
	}
	return out, nil
}

// Save writes the entity's own columns. Associations are written by the
// entity specific repositories.
func (r *repository[T]) Save(ctx context.Context, entity *T) error {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Save(entity).Error; err != nil {
		return translateError("save", err)
	}
	return nil
}

func (r *repository[T]) DeleteByID(ctx context.Context, id int64) error {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return err
	}
	return deleteByID[T](tx, id)
}

func (r *repository[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return false, err
	}
	var n int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translateError("exists", err)
	}
	return n > 0, nil
}

func (r *repository[T]) Count(ctx context.Context) (int64, error) {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Model(new(T)).Count(&n).Error; err != nil {
		return 0, translateError("count", err)
	}
	return n, nil
}

func deleteByID[T any](tx *gorm.DB, id int64) error {
	res := tx.Delete(new(T), id)
	if res.Error != nil {
		return translateError("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// translateError maps GORM errors onto the interfaces sentinels.
func translateError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return interfaces.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &interfaces.DatabaseError{Op: op, Err: interfaces.ErrUniqueConstraint}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &interfaces.DatabaseError{Op: op, Err: interfaces.ErrForeignKeyConstraint}
	default:
		return &interfaces.DatabaseError{Op: op, Err: err}
	}
}
