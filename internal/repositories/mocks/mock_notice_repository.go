package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/models"
)

type MockNoticeRepository struct {
	mock.Mock
}

func (m *MockNoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNoticeRepository) ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.Notice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notice), args.Error(1)
}

func (m *MockNoticeRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoticeRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoticeRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
