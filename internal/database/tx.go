package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn as one unit of work. Repositories called with the ctx
// passed to fn take part in the same transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client *mongo.Client
}

// NewTransactor returns a session-backed transactor. It needs a replica set
// or sharded cluster; standalone servers should use NoTransaction.
func NewTransactor(client *mongo.Client) Transactor {
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sctx mongo.SessionContext) (any, error) {
		return nil, fn(sctx)
	})
	return err
}

// NoTransaction runs fn directly; writes are applied one after another.
type NoTransaction struct{}

func (NoTransaction) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
