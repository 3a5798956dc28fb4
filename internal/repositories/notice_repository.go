package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskmanager/internal/models"
)

type NoticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.Notice, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type noticeRepository struct {
	coll *mongo.Collection
}

func NewNoticeRepository(db *mongo.Database) NoticeRepository {
	return &noticeRepository{coll: db.Collection(NoticesCollection)}
}

func (r *noticeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "team", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

// UnreadFilter matches notices addressed to userID that they have not read.
func UnreadFilter(userID primitive.ObjectID) bson.M {
	return bson.M{
		"team":   userID,
		"isRead": bson.M{"$nin": bson.A{userID}},
	}
}

func (r *noticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	now := time.Now().UTC()
	if notice.ID.IsZero() {
		notice.ID = primitive.NewObjectID()
	}
	if notice.NotiType == "" {
		notice.NotiType = models.NoticeAlert
	}
	if notice.Team == nil {
		notice.Team = []primitive.ObjectID{}
	}
	if notice.IsRead == nil {
		notice.IsRead = []primitive.ObjectID{}
	}
	notice.CreatedAt = now
	notice.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, notice); err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

func (r *noticeRepository) ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.Notice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, UnreadFilter(userID), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Notice](ctx, cur)
}

// MarkRead adds userID to a single notice's read list. A notice already read
// by the user does not match, so repeated calls change nothing.
func (r *noticeRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isRead": bson.M{"$nin": bson.A{userID}}},
		readUpdate(userID),
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *noticeRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, UnreadFilter(userID), readUpdate(userID))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func readUpdate(userID primitive.ObjectID) bson.M {
	return bson.M{
		"$addToSet": bson.M{"isRead": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
}
