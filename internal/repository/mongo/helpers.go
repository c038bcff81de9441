package mongo

import (
	"alcyxob/dieta-core/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sequences hands out integer identities from the counters collection,
// one document per entity kind: {_id: "<collection>", seq: N}.
type sequences struct {
	collection *mongo.Collection
}

func newSequences(collection *mongo.Collection) *sequences {
	return &sequences{collection: collection}
}

func (s *sequences) next(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// live adds the soft-delete guard to a filter. Every read goes through it.
func live(filter bson.M) bson.M {
	filter["isDeleted"] = bson.M{"$ne": true}
	return filter
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	if err := c.FindOne(ctx, live(filter), opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.Find(ctx, live(filter), opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func exists(ctx context.Context, c *mongo.Collection, filter bson.M) (bool, error) {
	n, err := c.CountDocuments(ctx, live(filter), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// setFields applies $set to one live document and refreshes updatedAt.
func setFields(ctx context.Context, c *mongo.Collection, id int64, fields bson.M) error {
	fields["updatedAt"] = stamp()
	result, err := c.UpdateOne(ctx, live(bson.M{"_id": id}), bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// softDelete flags the document; it is never removed physically.
func softDelete(ctx context.Context, c *mongo.Collection, id int64) error {
	now := stamp()
	return setFields(ctx, c, id, bson.M{"isDeleted": true, "deletedAt": now})
}

func insert(ctx context.Context, c *mongo.Collection, doc interface{}) error {
	if _, err := c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func stamp() time.Time {
	// Mongo keeps millisecond precision; truncate so values round-trip exactly.
	return time.Now().UTC().Truncate(time.Millisecond)
}

func createIndexes(ctx context.Context, c *mongo.Collection, indexes []mongo.IndexModel) error {
	_, err := c.Indexes().CreateMany(ctx, indexes)
	return err
}
