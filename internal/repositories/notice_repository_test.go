package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"taskmanager/internal/models"
)

func TestUnreadFilter(t *testing.T) {
	uid := primitive.NewObjectID()
	assert.Equal(t, bson.M{
		"team":   uid,
		"isRead": bson.M{"$nin": bson.A{uid}},
	}, UnreadFilter(uid))
}

func TestReadUpdateUsesAddToSet(t *testing.T) {
	uid := primitive.NewObjectID()
	u := readUpdate(uid)
	assert.Equal(t, bson.M{"isRead": uid}, u["$addToSet"])
}

func TestNoticeRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create fills defaults", func(mt *mtest.T) {
		repo := NewNoticeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &models.Notice{Text: "hello", Team: []primitive.ObjectID{primitive.NewObjectID()}}
		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, models.NoticeAlert, n.NotiType)
		assert.NotNil(t, n.IsRead)
		assert.False(t, n.ID.IsZero())
	})

	mt.Run("list unread", func(mt *mtest.T) {
		repo := NewNoticeRepository(mt.DB)
		uid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.notices", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "team", Value: bson.A{uid}},
			{Key: "text", Value: "new task"},
			{Key: "isRead", Value: bson.A{}},
		}))

		list, err := repo.ListUnread(ctx, uid)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "new task", list[0].Text)
		assert.False(t, list[0].ReadBy(uid))
	})

	mt.Run("mark read twice modifies once", func(mt *mtest.T) {
		repo := NewNoticeRepository(mt.DB)
		id, uid := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		first, err := repo.MarkRead(ctx, id, uid)
		require.NoError(t, err)
		second, err := repo.MarkRead(ctx, id, uid)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first)
		assert.Equal(t, int64(0), second)
	})

	mt.Run("mark all read", func(mt *mtest.T) {
		repo := NewNoticeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}, bson.E{Key: "nModified", Value: 4}))

		n, err := repo.MarkAllRead(ctx, primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}
