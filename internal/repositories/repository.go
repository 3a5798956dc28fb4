package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UsersCollection   = "users"
	TasksCollection   = "tasks"
	NoticesCollection = "notices"
)

var ErrNotFound = errors.New("document not found")

// Indexer is implemented by repositories that need collection indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
