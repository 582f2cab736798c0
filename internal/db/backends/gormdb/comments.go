package gormdb

import (
	"context"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/query"
)

type commentRepository struct {
	repository[entities.PostComment]
}

func newCommentRepository(d *Database) *commentRepository {
	return &commentRepository{repository[entities.PostComment]{
		db: d,
		query: query.NewBuilder(map[string]string{
			"id":        "id",
			"postId":    "post_id",
			"createdAt": "created_at",
			"updatedAt": "updated_at",
		}),
	}}
}

func (r *commentRepository) Save(ctx context.Context, c *entities.PostComment) error {
	c.SyncPostID()
	return r.repository.Save(ctx, c)
}

func (r *commentRepository) FindByPostID(ctx context.Context, postID int64) ([]*entities.PostComment, error) {
	tx, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entities.PostComment
	if err := tx.Where("post_id = ?", postID).Order("id").Find(&out).Error; err != nil {
		return nil, translateError("find comments by post", err)
	}
	return out, nil
}
