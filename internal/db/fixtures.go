package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
)

// TagFixtures provides sample tag names for seeding
var TagFixtures = []string{"go", "databases", "web", "testing"}

// PostFixture describes a sample post and the rows hanging off it
type PostFixture struct {
	Title       string
	Description string
	Tags        []string
	Comments    []string
}

// PostFixtures provides sample post data for seeding
var PostFixtures = []PostFixture{
	{
		Title:       "Introduction to Go",
		Description: "A tour of the language for developers coming from other ecosystems.",
		Tags:        []string{"go"},
		Comments:    []string{"Great intro!", "Looking forward to part two."},
	},
	{
		Title:       "Database Design Patterns",
		Description: "Shared primary keys, join tables and when to cascade.",
		Tags:        []string{"databases", "go"},
		Comments:    []string{"The join table section helped a lot."},
	},
	{
		Title: "Testing HTTP Handlers",
		Tags:  []string{"testing", "web"},
	},
}

// SeedResult counts the rows written by Seed
type SeedResult struct {
	Tags     int
	Posts    int
	Comments int
}

// Seed writes the fixtures through the repositories in one transaction.
// Tags that already exist (ignoring case) are reused.
func Seed(ctx context.Context, database interfaces.Database) (*SeedResult, error) {
	res := &SeedResult{}
	err := database.Transaction(ctx, func(ctx context.Context) error {
		tags := make(map[string]*entities.Tag, len(TagFixtures))
		for _, name := range TagFixtures {
			tag, err := database.Tags().FindByNameFold(ctx, name)
			switch {
			case err == nil:
			case errors.Is(err, interfaces.ErrNotFound):
				tag = &entities.Tag{Name: name}
				if err := database.Tags().Save(ctx, tag); err != nil {
					return fmt.Errorf("seed tag %q: %w", name, err)
				}
				res.Tags++
			default:
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
			tags[name] = tag
		}

		now := time.Now()
		for _, f := range PostFixtures {
			post := &entities.Post{Title: f.Title, CreatedAt: now, UpdatedAt: now}
			for _, name := range f.Tags {
				post.AddTag(tags[name])
			}
			if f.Description != "" {
				post.SetDetails(&entities.PostDetails{Description: f.Description, CreatedAt: now, UpdatedAt: now})
			}
			for _, review := range f.Comments {
				post.AddComment(&entities.PostComment{Review: review, CreatedAt: now, UpdatedAt: now})
			}
			if err := database.Posts().Save(ctx, post); err != nil {
				return fmt.Errorf("seed post %q: %w", f.Title, err)
			}
			res.Posts++
			res.Comments += len(f.Comments)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
