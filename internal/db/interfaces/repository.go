package interfaces

import (
	"context"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
)

// Repository provides CRUD operations for a specific entity type
type Repository[T any] interface {
	// FindByID retrieves a single record by its ID, or ErrNotFound
	FindByID(ctx context.Context, id int64) (*T, error)

	// FindAll retrieves records matching the query's sort and pagination
	FindAll(ctx context.Context, query *Query) ([]*T, error)

	// Save inserts a record with a zero ID and updates it otherwise
	Save(ctx context.Context, entity *T) error

	// DeleteByID removes a record by ID, or returns ErrNotFound
	DeleteByID(ctx context.Context, id int64) error

	ExistsByID(ctx context.Context, id int64) (bool, error)

	// Count returns the total number of records
	Count(ctx context.Context) (int64, error)
}

// PostRepository loads posts with their details, comments and tags and
// cascades deletes to them.
type PostRepository interface {
	Repository[entities.Post]
}

type TagRepository interface {
	Repository[entities.Tag]

	// FindByNameFold looks a tag up by name ignoring case
	FindByNameFold(ctx context.Context, name string) (*entities.Tag, error)
}

type CommentRepository interface {
	Repository[entities.PostComment]

	FindByPostID(ctx context.Context, postID int64) ([]*entities.PostComment, error)
}

type DetailsRepository interface {
	Repository[entities.PostDetails]
}
