package gormdb

import (
	"context"
	"fmt"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postRepository struct {
	repository[entities.Post]
}

func newPostRepository(d *Database) *postRepository {
	return &postRepository{repository[entities.Post]{
		db: d,
		query: query.NewBuilder(map[string]string{
			"id":        "id",
			"title":     "title",
			"createdAt": "created_at",
			"updatedAt": "updated_at",
		}),
		preload: func(tx *gorm.DB) *gorm.DB {
			return tx.Preload("Details").
				Preload("Comments", orderByID).
				Preload("Tags", orderByID)
		},
		afterLoad: (*entities.Post).SyncBackReferences,
	}}
}

func orderByID(tx *gorm.DB) *gorm.DB {
	return tx.Order("id")
}

// Save writes the post, replaces its tag links and inserts the details and
// comments it holds that are not stored yet. Tags must already be persisted.
func (r *postRepository) Save(ctx context.Context, post *entities.Post) error {
	return r.db.Transaction(ctx, func(ctx context.Context) error {
		tx, err := r.db.conn(ctx)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return translateError("save post", err)
		}
		if err := replaceTagLinks(tx, post); err != nil {
			return err
		}
		// Children already stored under this post are left alone; their own
		// repositories update them.
		if d := post.Details; d != nil {
			d.ID = post.ID
			d.Post = post
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(d).Error
			if err != nil {
				return translateError("save post details", err)
			}
		}
		for _, c := range post.Comments {
			stored := c.ID != 0 && c.PostID != nil && *c.PostID == post.ID
			c.Post = post
			c.SyncPostID()
			switch {
			case stored:
			case c.ID == 0:
				if err := tx.Create(c).Error; err != nil {
					return translateError("save post comment", err)
				}
			default:
				err := tx.Model(c).UpdateColumn("post_id", post.ID).Error
				if err != nil {
					return translateError("move post comment", err)
				}
			}
		}
		return nil
	})
}

func replaceTagLinks(tx *gorm.DB, post *entities.Post) error {
	if err := tx.Where("post_id = ?", post.ID).Delete(&entities.PostTag{}).Error; err != nil {
		return translateError("unlink tags", err)
	}
	if len(post.Tags) == 0 {
		return nil
	}
	links := make([]entities.PostTag, 0, len(post.Tags))
	for _, t := range post.Tags {
		if t.ID == 0 {
			return fmt.Errorf("tag %q is not persisted", t.Name)
		}
		links = append(links, entities.PostTag{PostID: post.ID, TagID: t.ID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return translateError("link tags", err)
	}
	return nil
}

// DeleteByID removes the post together with its comments, details and tag
// links. Tags themselves are kept.
func (r *postRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.Transaction(ctx, func(ctx context.Context) error {
		tx, err := r.db.conn(ctx)
		if err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&entities.PostComment{}).Error; err != nil {
			return translateError("delete post comments", err)
		}
		if err := tx.Delete(&entities.PostDetails{}, id).Error; err != nil {
			return translateError("delete post details", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&entities.PostTag{}).Error; err != nil {
			return translateError("unlink tags", err)
		}
		return deleteByID[entities.Post](tx, id)
	})
}
