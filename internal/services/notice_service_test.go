package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/models"
	repoMocks "taskmanager/internal/repositories/mocks"
)

func TestNoticeService_MarkRead(t *testing.T) {
	ctx := context.Background()
	uid := primitive.NewObjectID()

	t.Run("all", func(t *testing.T) {
		notices := new(repoMocks.MockNoticeRepository)
		svc := NewNoticeService(notices, new(repoMocks.MockTaskRepository), nil)
		notices.On("MarkAllRead", ctx, uid).Return(int64(3), nil)

		require.NoError(t, svc.MarkRead(ctx, uid, ReadAll, ""))
		notices.AssertExpectations(t)
	})

	t.Run("single notice is idempotent", func(t *testing.T) {
		notices := new(repoMocks.MockNoticeRepository)
		svc := NewNoticeService(notices, new(repoMocks.MockTaskRepository), nil)
		nid := primitive.NewObjectID()
		notices.On("MarkRead", ctx, nid, uid).Return(int64(1), nil).Once()
		notices.On("MarkRead", ctx, nid, uid).Return(int64(0), nil).Once()

		require.NoError(t, svc.MarkRead(ctx, uid, "", nid.Hex()))
		require.NoError(t, svc.MarkRead(ctx, uid, "", nid.Hex()))
		notices.AssertNumberOfCalls(t, "MarkRead", 2)
	})

	t.Run("bad id", func(t *testing.T) {
		svc := NewNoticeService(new(repoMocks.MockNoticeRepository), new(repoMocks.MockTaskRepository), nil)
		assert.ErrorIs(t, svc.MarkRead(ctx, uid, "", "not-an-id"), models.ErrInvalidID)
	})
}

func TestNoticeService_ListUnreadPopulatesTask(t *testing.T) {
	ctx := context.Background()
	uid, taskID := primitive.NewObjectID(), primitive.NewObjectID()
	notices := new(repoMocks.MockNoticeRepository)
	tasks := new(repoMocks.MockTaskRepository)
	svc := NewNoticeService(notices, tasks, nil)

	notices.On("ListUnread", ctx, uid).Return([]models.Notice{
		{ID: primitive.NewObjectID(), Text: "a", Task: &taskID, Team: []primitive.ObjectID{uid}},
		{ID: primitive.NewObjectID(), Text: "b", Team: []primitive.ObjectID{uid}},
	}, nil)
	tasks.On("FindByIDs", ctx, []primitive.ObjectID{taskID}).
		Return([]models.Task{{ID: taskID, Title: "Launch"}}, nil)

	list, err := svc.ListUnread(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Task)
	assert.Equal(t, "Launch", list[0].Task.Title)
	assert.Nil(t, list[1].Task)
}

type recordingSink struct {
	mu    sync.Mutex
	name  string
	err   error
	calls [][]models.User
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, _ *models.Notice, recipients []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recipients)
	return s.err
}

func TestNotifier_PublishSkipsInactiveAndSurvivesFailures(t *testing.T) {
	active, inactive := primitive.NewObjectID(), primitive.NewObjectID()
	users := new(repoMocks.MockUserRepository)
	users.On("FindByIDs", mock.Anything, []primitive.ObjectID{active, inactive}).Return([]models.User{
		{ID: active, Name: "On", IsActive: true},
		{ID: inactive, Name: "Off", IsActive: false},
	}, nil)

	failing := &recordingSink{name: "broken", err: errors.New("smtp down")}
	ok := &recordingSink{name: "ok"}
	n := NewNotifier(users, failing, ok)

	n.Publish(&models.Notice{ID: primitive.NewObjectID(), Text: "hi", Team: []primitive.ObjectID{active, inactive}})
	n.Wait()

	require.Len(t, failing.calls, 1)
	require.Len(t, ok.calls, 1)
	require.Len(t, ok.calls[0], 1)
	assert.Equal(t, "On", ok.calls[0][0].Name)
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	n.Publish(&models.Notice{})
	n.Wait()
}

func TestNotifier_GoRunsInlineWhenNil(t *testing.T) {
	var n *Notifier
	ran := false
	n.Go("job", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		ran = ok
		return nil
	})
	assert.True(t, ran)
}
