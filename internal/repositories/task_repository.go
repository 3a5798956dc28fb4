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

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Task, error)
	CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	Update(ctx context.Context, task *models.Task) error
	PushActivity(ctx context.Context, id primitive.ObjectID, activity models.Activity) error
	PushSubTask(ctx context.Context, id primitive.ObjectID, sub models.SubTask) error
	SetTrashed(ctx context.Context, id primitive.ObjectID, trashed bool) error
	RestoreAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteTrashed(ctx context.Context) (int64, error)
	SetDependencies(ctx context.Context, id primitive.ObjectID, deps []primitive.ObjectID) (*models.Task, error)
	EnsureIndexes(ctx context.Context) error
}

type taskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) TaskRepository {
	return &taskRepository{coll: db.Collection(TasksCollection)}
}

func (r *taskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isTrashed", Value: 1}, {Key: "stage", Value: 1}}},
		{Keys: bson.D{{Key: "team", Value: 1}}},
	})
	return err
}

// TaskListFilter builds the Mongo filter for List.
func TaskListFilter(f models.TaskFilter) bson.M {
	q := bson.M{"isTrashed": f.IsTrashed}
	if f.Stage != nil {
		q["stage"] = *f.Stage
	}
	if f.Member != nil {
		// team — массив, совпадение по элементу
		q["team"] = *f.Member
	}
	return q
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Normalize()
	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *taskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, TaskListFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Task](ctx, cur)
}

func (r *taskRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Task](ctx, cur)
}

func (r *taskRepository) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.coll.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	task.Normalize()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": bson.M{
		"title":     task.Title,
		"date":      task.Date,
		"team":      task.Team,
		"stage":     task.Stage,
		"priority":  task.Priority,
		"assets":    task.Assets,
		"updatedAt": task.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) PushActivity(ctx context.Context, id primitive.ObjectID, activity models.Activity) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"activities": activity},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *taskRepository) PushSubTask(ctx context.Context, id primitive.ObjectID, sub models.SubTask) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"subTasks": sub},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *taskRepository) SetTrashed(ctx context.Context, id primitive.ObjectID, trashed bool) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"isTrashed": trashed,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *taskRepository) RestoreAll(ctx context.Context) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{"isTrashed": true}, bson.M{"$set": bson.M{
		"isTrashed": false,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *taskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) DeleteTrashed(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"isTrashed": true})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *taskRepository) SetDependencies(ctx context.Context, id primitive.ObjectID, deps []primitive.ObjectID) (*models.Task, error) {
	if deps == nil {
		deps = []primitive.ObjectID{}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"dependencies": deps,
		"updatedAt":    time.Now().UTC(),
	}}, opts).Decode(&t)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *taskRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
