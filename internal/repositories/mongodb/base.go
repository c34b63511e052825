package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// baseRepository provides the collection plumbing shared by all repositories
type baseRepository[T any] struct {
	coll   *mongo.Collection
	entity string
	logger *logrus.Logger
}

func newBaseRepository[T any](db *mongo.Database, collection, entity string, logger *logrus.Logger) *baseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	return &baseRepository[T]{
		coll:   db.Collection(collection),
		entity: entity,
		logger: logger,
	}
}

// Count returns the number of documents in the collection
func (r *baseRepository[T]) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	r.logOperation("count", nil, start, err)
	if err != nil {
		return 0, repositories.NewRepositoryError("count", r.entity, "", err)
	}
	return count, nil
}

func (r *baseRepository[T]) insert(ctx context.Context, id string, doc *T) error {
	if strings.TrimSpace(id) == "" {
		return repositories.NewRepositoryError("validate", r.entity, id, repositories.ErrInvalidID)
	}

	start := time.Now()
	_, err := r.coll.InsertOne(ctx, doc)
	r.logOperation("create", bson.M{"_id": id}, start, err)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.DuplicateError(r.entity, "id", id)
		}
		return repositories.NewRepositoryError("create", r.entity, id, err)
	}
	return nil
}

func (r *baseRepository[T]) get(ctx context.Context, id string) (*T, error) {
	if strings.TrimSpace(id) == "" {
		return nil, repositories.NewRepositoryError("validate", r.entity, id, repositories.ErrInvalidID)
	}

	doc, err := r.findOne(ctx, "get_by_id", bson.M{"_id": id})
	if err != nil && repositories.IsNotFound(err) {
		return nil, repositories.NotFoundError(r.entity, id)
	}
	return doc, err
}

// findOne returns the lowest-id document matching filter
func (r *baseRepository[T]) findOne(ctx context.Context, operation string, filter bson.M) (*T, error) {
	start := time.Now()
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})

	doc := new(T)
	err := r.coll.FindOne(ctx, filter, opts).Decode(doc)
	r.logOperation(operation, filter, start, ignoreNoDocuments(err))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.NotFoundError(r.entity, fmt.Sprint(filter))
		}
		return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
	}
	return doc, nil
}

// find returns all documents matching filter ordered by id
func (r *baseRepository[T]) find(ctx context.Context, operation string, filter bson.M) ([]*T, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	r.logOperation(operation, filter, start, err)
	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
	}
	defer cursor.Close(ctx)

	var docs []*T
	for cursor.Next(ctx) {
		doc := new(T)
		if err := cursor.Decode(doc); err != nil {
			return nil, repositories.NewRepositoryError("decode", r.entity, "", err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
	}
	return docs, nil
}

func (r *baseRepository[T]) logOperation(operation string, filter any, start time.Time, err error) {
	fields := logrus.Fields{
		"operation":  operation,
		"collection": r.coll.Name(),
		"filter":     filter,
		"duration":   time.Since(start),
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

func ignoreNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}
