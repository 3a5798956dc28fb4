package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/authz"
	"taskmanager/internal/models"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListTeam(ctx context.Context) ([]models.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, actor authz.Principal, req models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, password string) error {
	args := m.Called(ctx, userID, password)
	return args.Error(0)
}

func (m *MockUserService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, actor authz.Principal, req models.CreateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Duplicate(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) PostActivity(ctx context.Context, id primitive.ObjectID, actor authz.Principal, req models.ActivityRequest) error {
	args := m.Called(ctx, id, actor, req)
	return args.Error(0)
}

func (m *MockTaskService) Dashboard(ctx context.Context, actor authz.Principal) (*models.Dashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaskView), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id primitive.ObjectID) (*models.TaskView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskView), args.Error(1)
}

func (m *MockTaskService) AddSubTask(ctx context.Context, id primitive.ObjectID, req models.SubTaskRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockTaskService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Trash(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) DeleteRestore(ctx context.Context, action models.DeleteRestoreAction, id string) error {
	args := m.Called(ctx, action, id)
	return args.Error(0)
}

func (m *MockTaskService) SetDependencies(ctx context.Context, id primitive.ObjectID, deps []string) (*models.TaskView, error) {
	args := m.Called(ctx, id, deps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskView), args.Error(1)
}

type MockNoticeService struct {
	mock.Mock
}

func (m *MockNoticeService) Create(ctx context.Context, notice *models.Notice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNoticeService) Publish(notice *models.Notice) {
	m.Called(notice)
}

func (m *MockNoticeService) ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.NoticeView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NoticeView), args.Error(1)
}

func (m *MockNoticeService) MarkRead(ctx context.Context, userID primitive.ObjectID, readType, id string) error {
	args := m.Called(ctx, userID, readType, id)
	return args.Error(0)
}
