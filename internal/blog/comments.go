package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"go.uber.org/zap"
)

type CommentInput struct {
	PostID int64
	Review string
}

type CommentService struct {
	tx       interfaces.Transactor
	posts    interfaces.PostRepository
	comments interfaces.CommentRepository
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewCommentService(tx interfaces.Transactor, posts interfaces.PostRepository, comments interfaces.CommentRepository, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{
		tx:       tx,
		posts:    posts,
		comments: comments,
		logger:   logger,
		now:      time.Now,
	}
}

// Save attaches a new comment to an existing post.
func (s *CommentService) Save(ctx context.Context, in CommentInput) (*entities.PostComment, error) {
	if err := checkID("Post", in.PostID); err != nil {
		return nil, err
	}
	var comment *entities.PostComment
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		post, err := s.posts.FindByID(ctx, in.PostID)
		if err != nil {
			return notFound("Post", in.PostID, err)
		}

		now := s.now()
		comment = &entities.PostComment{Review: in.Review, CreatedAt: now, UpdatedAt: now}
		post.AddComment(comment)
		if err := s.comments.Save(ctx, comment); err != nil {
			return fmt.Errorf("save comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Comment created", "comment_id", comment.ID, "post_id", in.PostID)
	return comment, nil
}

func (s *CommentService) FindByID(ctx context.Context, id int64) (*entities.PostComment, error) {
	if err := checkID("Comment", id); err != nil {
		return nil, err
	}
	var comment *entities.PostComment
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		c, err := s.comments.FindByID(ctx, id)
		if err != nil {
			return notFound("Comment", id, err)
		}
		comment = c
		return nil
	})
	return comment, err
}

func (s *CommentService) FindAll(ctx context.Context, q *interfaces.Query) ([]*entities.PostComment, int64, error) {
	var (
		comments []*entities.PostComment
		total    int64
	)
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if comments, err = s.comments.FindAll(ctx, q); err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		if total, err = s.comments.Count(ctx); err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// FindByPostID lists the comments of an existing post in creation order.
func (s *CommentService) FindByPostID(ctx context.Context, postID int64) ([]*entities.PostComment, error) {
	if err := checkID("Post", postID); err != nil {
		return nil, err
	}
	var comments []*entities.PostComment
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		exists, err := s.posts.ExistsByID(ctx, postID)
		if err != nil {
			return fmt.Errorf("post %d: %w", postID, err)
		}
		if !exists {
			return &NotFoundError{Resource: "Post", Value: postID}
		}
		if comments, err = s.comments.FindByPostID(ctx, postID); err != nil {
			return fmt.Errorf("list comments of post %d: %w", postID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update replaces the review text.
func (s *CommentService) Update(ctx context.Context, id int64, review string) (*entities.PostComment, error) {
	if err := checkID("Comment", id); err != nil {
		return nil, err
	}
	var comment *entities.PostComment
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := s.comments.FindByID(ctx, id)
		if err != nil {
			return notFound("Comment", id, err)
		}
		c.Review = review
		c.UpdatedAt = s.now()
		if err := s.comments.Save(ctx, c); err != nil {
			return fmt.Errorf("update comment %d: %w", id, err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Comment updated", "comment_id", id)
	return comment, nil
}

func (s *CommentService) DeleteByID(ctx context.Context, id int64) error {
	if err := checkID("Comment", id); err != nil {
		return err
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.comments.DeleteByID(ctx, id); err != nil {
			return notFound("Comment", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Infow("Comment deleted", "comment_id", id)
	return nil
}

func (s *CommentService) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := checkID("Comment", id); err != nil {
		return false, err
	}
	var exists bool
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.comments.ExistsByID(ctx, id)
		return err
	})
	return exists, err
}
