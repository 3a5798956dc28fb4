package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"taskmanager/internal/models"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &models.User{Name: "Ann", Email: "ann@example.com", IsActive: true}
		require.NoError(t, repo.Create(ctx, u))
		assert.False(t, u.ID.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(ctx, &models.User{Email: "ann@example.com"})
		require.Error(t, err)
		assert.True(t, mongo.IsDuplicateKeyError(err))
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "ann@example.com"},
			{Key: "password", Value: "hash"},
			{Key: "isActive", Value: true},
			{Key: "isAdmin", Value: true},
		}))

		u, err := repo.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, "hash", u.Password)
		assert.True(t, u.IsAdmin)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	mt.Run("set active", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "isActive", Value: false},
		}}))

		u, err := repo.SetActive(ctx, id, false)
		require.NoError(t, err)
		assert.False(t, u.IsActive)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(ctx, primitive.NewObjectID())
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
