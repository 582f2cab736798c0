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

// PostInput is the writable part of a post. A nil TagIDs on update keeps
// the current tags; an empty one clears them.
type PostInput struct {
	Title  string
	TagIDs []*int64
}

type PostService struct {
	tx     interfaces.Transactor
	posts  interfaces.PostRepository
	tags   interfaces.TagRepository
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewPostService(tx interfaces.Transactor, posts interfaces.PostRepository, tags interfaces.TagRepository, logger *zap.SugaredLogger) *PostService {
	return &PostService{
		tx:     tx,
		posts:  posts,
		tags:   tags,
		logger: logger,
		now:    time.Now,
	}
}

// Save creates a post linked to the given tags. Every tag id is checked
// before anything is written.
func (s *PostService) Save(ctx context.Context, in PostInput) (*entities.Post, error) {
	var post *entities.Post
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		tags, err := s.resolveTags(ctx, in.TagIDs)
		if err != nil {
			return err
		}

		now := s.now()
		post = &entities.Post{Title: in.Title, CreatedAt: now, UpdatedAt: now}
		for _, t := range tags {
			post.AddTag(t)
		}
		if err := s.posts.Save(ctx, post); err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Post created", "post_id", post.ID, "tags", len(post.Tags))
	return post, nil
}

func (s *PostService) FindByID(ctx context.Context, id int64) (*entities.Post, error) {
	if err := checkID("Post", id); err != nil {
		return nil, err
	}
	var post *entities.Post
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		p, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return notFound("Post", id, err)
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// FindAll returns one page of posts and the total number of posts.
func (s *PostService) FindAll(ctx context.Context, q *interfaces.Query) ([]*entities.Post, int64, error) {
	var (
		posts []*entities.Post
		total int64
	)
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if posts, err = s.posts.FindAll(ctx, q); err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		if total, err = s.posts.Count(ctx); err != nil {
			return fmt.Errorf("count posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update replaces the title and, when TagIDs is not nil, the tag set.
func (s *PostService) Update(ctx context.Context, id int64, in PostInput) (*entities.Post, error) {
	if err := checkID("Post", id); err != nil {
		return nil, err
	}
	var post *entities.Post
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		// Tag ids are checked first: bad ids are a 400 even for a missing post.
		var tags []*entities.Tag
		if in.TagIDs != nil {
			var err error
			if tags, err = s.resolveTags(ctx, in.TagIDs); err != nil {
				return err
			}
		}
		p, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return notFound("Post", id, err)
		}
		if in.TagIDs != nil {
			p.ReplaceTags(tags)
		}
		p.Title = in.Title
		p.UpdatedAt = s.now()
		if err := s.posts.Save(ctx, p); err != nil {
			return fmt.Errorf("update post %d: %w", id, err)
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Post updated", "post_id", post.ID, "tags", len(post.Tags))
	return post, nil
}

// DeleteByID removes the post with its comments and details.
func (s *PostService) DeleteByID(ctx context.Context, id int64) error {
	if err := checkID("Post", id); err != nil {
		return err
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.posts.DeleteByID(ctx, id); err != nil {
			return notFound("Post", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Infow("Post deleted", "post_id", id)
	return nil
}

func (s *PostService) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := checkID("Post", id); err != nil {
		return false, err
	}
	var exists bool
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.posts.ExistsByID(ctx, id)
		return err
	})
	return exists, err
}

// resolveTags loads the tags for ids. All problems are collected into a
// single ValidationError. Repeated ids are looked up once.
func (s *PostService) resolveTags(ctx context.Context, ids []*int64) ([]*entities.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		tags     []*entities.Tag
		problems []string
		sawNull  bool
		seen     = make(map[int64]struct{}, len(ids))
	)
	for _, id := range ids {
		if id == nil {
			if !sawNull {
				problems = append(problems, "Tag id cannot be null")
				sawNull = true
			}
			continue
		}
		if _, dup := seen[*id]; dup {
			continue
		}
		seen[*id] = struct{}{}

		if *id <= 0 {
			problems = append(problems, fmt.Sprintf("Tag id must be greater than 0, got %d", *id))
			continue
		}
		tag, err := s.tags.FindByID(ctx, *id)
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			problems = append(problems, fmt.Sprintf("Tag with id %d not found", *id))
		case err != nil:
			return nil, fmt.Errorf("find tag %d: %w", *id, err)
		default:
			tags = append(tags, tag)
		}
	}

	if len(problems) > 0 {
		s.logger.Warnw("Rejected tag ids", "problems", problems)
		return nil, newValidationError("Invalid tag ids provided", problems...)
	}
	return tags, nil
}
