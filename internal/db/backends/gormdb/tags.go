package gormdb

import (
	"context"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/query"
)

type tagRepository struct {
	repository[entities.Tag]
}

func newTagRepository(d *Database) *tagRepository {
	return &tagRepository{repository[entities.Tag]{
		db:    d,
		query: query.NewBuilder(map[string]string{"id": "id", "name": "name"}),
	}}
}

func (r *tagRepository) FindByNameFold(ctx context.Context, name string) (*entities.Tag, error) {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}
	var tag entities.Tag
	if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error; err != nil {
		return nil, translateError("find tag by name", err)
	}
	return &tag, nil
}

// DeleteByID unlinks the tag from every post before deleting it.
func (r *tagRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.Transaction(ctx, func(ctx context.Context) error {
		tx, err := r.db.conn(ctx)
		if err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", id).Delete(&entities.PostTag{}).Error; err != nil {
			return translateError("unlink posts", err)
		}
		return deleteByID[entities.Tag](tx, id)
	})
}
