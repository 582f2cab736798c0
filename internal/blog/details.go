package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"go.uber.org/zap"
)

const detailsResource = "Post detail"

type DetailsInput struct {
	PostID      int64
	Description string
}

type DetailsService struct {
	tx      interfaces.Transactor
	posts   interfaces.PostRepository
	details interfaces.DetailsRepository
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewDetailsService(tx interfaces.Transactor, posts interfaces.PostRepository, details interfaces.DetailsRepository, logger *zap.SugaredLogger) *DetailsService {
	return &DetailsService{
		tx:      tx,
		posts:   posts,
		details: details,
		logger:  logger,
		now:     time.Now,
	}
}

// Save creates the details of a post. A post has at most one details row.
func (s *DetailsService) Save(ctx context.Context, in DetailsInput) (*entities.PostDetails, error) {
	if err := checkID("Post", in.PostID); err != nil {
		return nil, err
	}
	var details *entities.PostDetails
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		post, err := s.posts.FindByID(ctx, in.PostID)
		if err != nil {
			return notFound("Post", in.PostID, err)
		}
		if post.Details != nil {
			msg := fmt.Sprintf("Post with id %d already has details", in.PostID)
			return newValidationError(msg, msg)
		}

		now := s.now()
		details = &entities.PostDetails{Description: in.Description, CreatedAt: now, UpdatedAt: now}
		post.SetDetails(details)
		if err := s.details.Save(ctx, details); err != nil {
			return fmt.Errorf("save post details: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Post details created", "post_id", in.PostID)
	return details, nil
}

func (s *DetailsService) FindByID(ctx context.Context, id int64) (*entities.PostDetails, error) {
	if err := checkID(detailsResource, id); err != nil {
		return nil, err
	}
	var details *entities.PostDetails
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		d, err := s.details.FindByID(ctx, id)
		if err != nil {
			return notFound(detailsResource, id, err)
		}
		details = d
		return nil
	})
	return details, err
}

// FindByPostID returns the details owned by a post. Details share the
// post's id.
func (s *DetailsService) FindByPostID(ctx context.Context, postID int64) (*entities.PostDetails, error) {
	if err := checkID("Post", postID); err != nil {
		return nil, err
	}
	var details *entities.PostDetails
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		d, err := s.details.FindByID(ctx, postID)
		if errors.Is(err, interfaces.ErrNotFound) {
			return &NotFoundError{Resource: detailsResource, Field: "post id", Value: postID}
		}
		if err != nil {
			return fmt.Errorf("details of post %d: %w", postID, err)
		}
		details = d
		return nil
	})
	return details, err
}

func (s *DetailsService) FindAll(ctx context.Context, q *interfaces.Query) ([]*entities.PostDetails, int64, error) {
	var (
		details []*entities.PostDetails
		total   int64
	)
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if details, err = s.details.FindAll(ctx, q); err != nil {
			return fmt.Errorf("list post details: %w", err)
		}
		if total, err = s.details.Count(ctx); err != nil {
			return fmt.Errorf("count post details: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Update replaces the description.
func (s *DetailsService) Update(ctx context.Context, id int64, description string) (*entities.PostDetails, error) {
	if err := checkID(detailsResource, id); err != nil {
		return nil, err
	}
	var details *entities.PostDetails
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		d, err := s.details.FindByID(ctx, id)
		if err != nil {
			return notFound(detailsResource, id, err)
		}
		d.Description = description
		d.UpdatedAt = s.now()
		if err := s.details.Save(ctx, d); err != nil {
			return fmt.Errorf("update post details %d: %w", id, err)
		}
		details = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Post details updated", "post_id", id)
	return details, nil
}

func (s *DetailsService) DeleteByID(ctx context.Context, id int64) error {
	if err := checkID(detailsResource, id); err != nil {
		return err
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.details.DeleteByID(ctx, id); err != nil {
			return notFound(detailsResource, id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Infow("Post details deleted", "post_id", id)
	return nil
}

func (s *DetailsService) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := checkID(detailsResource, id); err != nil {
		return false, err
	}
	var exists bool
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.details.ExistsByID(ctx, id)
		return err
	})
	return exists, err
}
