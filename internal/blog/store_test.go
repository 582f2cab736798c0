package blog

import (
	"context"
	"testing"
	"time"

	gdb "github.com/sampleprojects/postandcomments/internal/db"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storeServices struct {
	db       interfaces.Database
	posts    *PostService
	tags     *TagService
	comments *CommentService
	details  *DetailsService
}

// newStoreServices wires the services to an in-memory SQLite database.
func newStoreServices(t *testing.T) storeServices {
	t.Helper()
	ctx := context.Background()

	database := gdb.NewInMemoryDatabase(nil)
	require.NoError(t, gdb.ConnectAndMigrate(ctx, database, true))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	logger := zap.NewNop().Sugar()
	return storeServices{
		db:       database,
		posts:    NewPostService(database, database.Posts(), database.Tags(), logger),
		tags:     NewTagService(database, database.Tags(), logger),
		comments: NewCommentService(database, database.Posts(), database.Comments(), logger),
		details:  NewDetailsService(database, database.Posts(), database.Details(), logger),
	}
}

func TestPostService_UpdateLeavesCommentsAndDetailsAlone(t *testing.T) {
	ctx := context.Background()
	s := newStoreServices(t)

	post, err := s.posts.Save(ctx, PostInput{Title: "Before"})
	require.NoError(t, err)
	_, err = s.details.Save(ctx, DetailsInput{PostID: post.ID, Description: "about it"})
	require.NoError(t, err)
	comment, err := s.comments.Save(ctx, CommentInput{PostID: post.ID, Review: "first"})
	require.NoError(t, err)

	commentBefore, err := s.db.Comments().FindByID(ctx, comment.ID)
	require.NoError(t, err)
	detailsBefore, err := s.db.Details().FindByID(ctx, post.ID)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	tag, _, err := s.tags.Save(ctx, "go")
	require.NoError(t, err)
	_, err = s.posts.Update(ctx, post.ID, PostInput{Title: "After", TagIDs: []*int64{&tag.ID}})
	require.NoError(t, err)

	commentAfter, err := s.db.Comments().FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.True(t, commentBefore.UpdatedAt.Equal(commentAfter.UpdatedAt),
		"comment updatedAt moved from %s to %s", commentBefore.UpdatedAt, commentAfter.UpdatedAt)
	assert.Equal(t, "first", commentAfter.Review)

	detailsAfter, err := s.db.Details().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, detailsBefore.UpdatedAt.Equal(detailsAfter.UpdatedAt))
	assert.Equal(t, "about it", detailsAfter.Description)

	reloaded, err := s.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", reloaded.Title)
	assert.Equal(t, []string{"go"}, reloaded.TagNames())
	assert.Len(t, reloaded.Comments, 1)
	require.NotNil(t, reloaded.Details)
}

func TestPostService_UpdateMissingPostWithBadTags(t *testing.T) {
	s := newStoreServices(t)

	_, err := s.posts.Update(context.Background(), 999, PostInput{Title: "x", TagIDs: []*int64{int64Ptr(42)}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Tag with id 42 not found"}, verr.Errors)
}
