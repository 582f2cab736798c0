package blog

import (
	"context"

	"github.com/sampleprojects/postandcomments/internal/db/entities"
	"github.com/sampleprojects/postandcomments/internal/db/interfaces"
	"github.com/stretchr/testify/mock"
)

// passThroughTx runs every function directly on the caller's context.
type passThroughTx struct{}

func (passThroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passThroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockRepository is a testify mock of interfaces.Repository[T]
type MockRepository[T any] struct {
	mock.Mock
}

func (m *MockRepository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	args := m.MethodCalled("FindByID", ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) FindAll(ctx context.Context, q *interfaces.Query) ([]*T, error) {
	args := m.MethodCalled("FindAll", ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*T), args.Error(1)
}

func (m *MockRepository[T]) Save(ctx context.Context, entity *T) error {
	return m.MethodCalled("Save", ctx, entity).Error(0)
}

func (m *MockRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	return m.MethodCalled("DeleteByID", ctx, id).Error(0)
}

func (m *MockRepository[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.MethodCalled("ExistsByID", ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) Count(ctx context.Context) (int64, error) {
	args := m.MethodCalled("Count", ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPostRepository struct {
	MockRepository[entities.Post]
}

type MockTagRepository struct {
	MockRepository[entities.Tag]
}

func (m *MockTagRepository) FindByNameFold(ctx context.Context, name string) (*entities.Tag, error) {
	args := m.MethodCalled("FindByNameFold", ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tag), args.Error(1)
}

type MockCommentRepository struct {
	MockRepository[entities.PostComment]
}

func (m *MockCommentRepository) FindByPostID(ctx context.Context, postID int64) ([]*entities.PostComment, error) {
	args := m.MethodCalled("FindByPostID", ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PostComment), args.Error(1)
}

type MockDetailsRepository struct {
	MockRepository[entities.PostDetails]
}

var (
	_ interfaces.PostRepository    = (*MockPostRepository)(nil)
	_ interfaces.TagRepository     = (*MockTagRepository)(nil)
	_ interfaces.CommentRepository = (*MockCommentRepository)(nil)
	_ interfaces.DetailsRepository = (*MockDetailsRepository)(nil)
)

func int64Ptr(v int64) *int64 { return &v }
