package api

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sampleprojects/postandcomments/internal/blog"
)

// Requests

type PostRequest struct {
	Title  string   `json:"title"`
	TagIDs []*int64 `json:"tagIds"`
}

func (r *PostRequest) Validate() []string {
	return requiredText("title", "Title", r.Title, blog.MaxTitleLength)
}

func (r *PostRequest) input() blog.PostInput {
	return blog.PostInput{Title: strings.TrimSpace(r.Title), TagIDs: r.TagIDs}
}

// PostCommentRequest accepts the text as either "comment" or "review".
type PostCommentRequest struct {
	Comment string `json:"comment"`
	Review  string `json:"review"`
	PostID  *int64 `json:"postId"`
}

func (r *PostCommentRequest) text() string {
	if strings.TrimSpace(r.Comment) != "" {
		return strings.TrimSpace(r.Comment)
	}
	return strings.TrimSpace(r.Review)
}

// Validate checks the request; postId is only required when creating.
func (r *PostCommentRequest) Validate(creating bool) []string {
	var errs []string
	if r.text() == "" {
		errs = append(errs, "comment: Comment is required")
	}
	if creating && r.PostID == nil {
		errs = append(errs, "postId: Post id is required")
	}
	return errs
}

type PostDetailsRequest struct {
	PostID      *int64 `json:"postId"`
	Description string `json:"description"`
}

func (r *PostDetailsRequest) Validate(creating bool) []string {
	var errs []string
	if creating && r.PostID == nil {
		errs = append(errs, "postId: Post id is required")
	}
	errs = append(errs, requiredText("description", "Description", r.Description, blog.MaxDescriptionLength)...)
	return errs
}

type TagRequest struct {
	Name string `json:"name"`
}

func (r *TagRequest) Validate() []string {
	return requiredText("name", "Name", r.Name, blog.MaxTagNameLength)
}

// requiredText checks value as it will be stored, without surrounding space.
func requiredText(field, label, value string, max int) []string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return []string{fmt.Sprintf("%s: %s is required", field, label)}
	case utf8.RuneCountInString(value) > max:
		return []string{fmt.Sprintf("%s: %s must be at most %d characters", field, label, max)}
	}
	return nil
}

// Responses

type PostDTO struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	PostDetails *PostDetailsDTO   `json:"postDetails,omitempty"`
	Comments    []*PostCommentDTO `json:"comments"`
	Tags        []*TagDTO         `json:"tags"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type PostCommentDTO struct {
	ID        int64     `json:"id"`
	Review    string    `json:"review"`
	PostID    *int64    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PostDetailsDTO struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"postId"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HealthDTO is returned by /readyz.
type HealthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
