package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"go.uber.org/zap"
)

type TagService struct {
	tx     interfaces.Transactor
	tags   interfaces.TagRepository
	logger *zap.SugaredLogger
}

func NewTagService(tx interfaces.Transactor, tags interfaces.TagRepository, logger *zap.SugaredLogger) *TagService {
	return &TagService{tx: tx, tags: tags, logger: logger}
}

// Save returns the tag whose name matches ignoring case, or creates one.
// created reports whether a new row was written.
func (s *TagService) Save(ctx context.Context, name string) (tag *entities.Tag, created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, newValidationError("Tag name cannot be blank", "name: must not be blank")
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.tags.FindByNameFold(ctx, name)
		switch {
		case err == nil:
			tag = existing
			return nil
		case !errors.Is(err, interfaces.ErrNotFound):
			return fmt.Errorf("find tag %q: %w", name, err)
		}

		tag = &entities.Tag{Name: name}
		if err := s.tags.Save(ctx, tag); err != nil {
			return fmt.Errorf("save tag %q: %w", name, err)
		}
		created = true
		return nil
	})
	if errors.Is(err, interfaces.ErrUniqueConstraint) {
		// A concurrent save of the same name won the insert.
		created = false
		err = s.tx.ReadOnly(ctx, func(ctx context.Context) error {
			var err error
			tag, err = s.tags.FindByNameFold(ctx, name)
			return err
		})
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Infow("Tag created", "tag_id", tag.ID, "name", tag.Name)
	} else {
		s.logger.Debugw("Tag already exists", "tag_id", tag.ID, "name", tag.Name)
	}
	return tag, created, nil
}

func (s *TagService) FindByID(ctx context.Context, id int64) (*entities.Tag, error) {
	if err := checkID("Tag", id); err != nil {
		return nil, err
	}
	var tag *entities.Tag
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		t, err := s.tags.FindByID(ctx, id)
		if err != nil {
			return notFound("Tag", id, err)
		}
		tag = t
		return nil
	})
	return tag, err
}

// FindByName looks the tag up ignoring case.
func (s *TagService) FindByName(ctx context.Context, name string) (*entities.Tag, error) {
	var tag *entities.Tag
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		t, err := s.tags.FindByNameFold(ctx, name)
		if errors.Is(err, interfaces.ErrNotFound) {
			return &NotFoundError{Resource: "Tag", Field: "name", Value: name}
		}
		if err != nil {
			return fmt.Errorf("find tag %q: %w", name, err)
		}
		tag = t
		return nil
	})
	return tag, err
}

func (s *TagService) FindAll(ctx context.Context, q *interfaces.Query) ([]*entities.Tag, int64, error) {
	var (
		tags  []*entities.Tag
		total int64
	)
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if tags, err = s.tags.FindAll(ctx, q); err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		if total, err = s.tags.Count(ctx); err != nil {
			return fmt.Errorf("count tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

// Update renames a tag. Renaming onto another tag's name is rejected.
func (s *TagService) Update(ctx context.Context, id int64, name string) (*entities.Tag, error) {
	if err := checkID("Tag", id); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("Tag name cannot be blank", "name: must not be blank")
	}

	var tag *entities.Tag
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		t, err := s.tags.FindByID(ctx, id)
		if err != nil {
			return notFound("Tag", id, err)
		}

		other, err := s.tags.FindByNameFold(ctx, name)
		switch {
		case err == nil && other.ID != id:
			msg := fmt.Sprintf("Tag with name %s already exists", other.Name)
			return newValidationError(msg, msg)
		case err != nil && !errors.Is(err, interfaces.ErrNotFound):
			return fmt.Errorf("find tag %q: %w", name, err)
		}

		t.Name = name
		if err := s.tags.Save(ctx, t); err != nil {
			return fmt.Errorf("update tag %d: %w", id, err)
		}
		tag = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Tag updated", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

// DeleteByID removes the tag and unlinks it from its posts.
func (s *TagService) DeleteByID(ctx context.Context, id int64) error {
	if err := checkID("Tag", id); err != nil {
		return err
	}
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.tags.DeleteByID(ctx, id); err != nil {
			return notFound("Tag", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Infow("Tag deleted", "tag_id", id)
	return nil
}

func (s *TagService) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if err := checkID("Tag", id); err != nil {
		return false, err
	}
	var exists bool
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.tags.ExistsByID(ctx, id)
		return err
	})
	return exists, err
}
