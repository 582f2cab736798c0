package gormdb

import (
	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/query"
)

type detailsRepository struct {
	repository[entities.PostDetails]
}

func newDetailsRepository(d *Database) *detailsRepository {
	return &detailsRepository{repository[entities.PostDetails]{
		db: d,
		query: query.NewBuilder(map[string]string{
			"id":        "id",
			"postId":    "id",
			"createdAt": "created_at",
			"updatedAt": "updated_at",
		}),
	}}
}
