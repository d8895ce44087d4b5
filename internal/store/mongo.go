package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"call-audit-go/internal/types"
)

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongo returns a Store over the call_audit collection. call_id is the
// document _id, so insert-once and point lookups come for free.
func NewMongo(client *mongo.Client, database string) Store {
	db := client.Database(database)
	return &mongoStore{collection: db.Collection("call_audit")}
}

func (s *mongoStore) Put(ctx context.Context, rec types.CallRecord) error {
	if rec.CallID == "" {
		return fmt.Errorf("store: empty call_id")
	}
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("store: call %s already recorded: %w", rec.CallID, err)
		}
		return fmt.Errorf("store: put %s: %w", rec.CallID, err)
	}
	return nil
}

func (s *mongoStore) Get(ctx context.Context, callID string) (types.CallRecord, error) {
	var rec types.CallRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": callID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return types.CallRecord{}, ErrNotFound
	}
	if err != nil {
		return types.CallRecord{}, fmt.Errorf("store: get %s: %w", callID, err)
	}
	return rec, nil
}

// Scan pages through records in _id order; the continuation token is the
// last _id of the previous page.
func (s *mongoStore) Scan(ctx context.Context, token string, limit int) ([]types.CallRecord, string, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	filter := bson.M{}
	if token != "" {
		filter["_id"] = bson.M{"$gt": token}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("store: scan: %w", err)
	}
	defer cursor.Close(ctx)

	var page []types.CallRecord
	if err := cursor.All(ctx, &page); err != nil {
		return nil, "", fmt.Errorf("store: scan decode: %w", err)
	}

	next := ""
	if len(page) == limit {
		next = page[len(page)-1].CallID
	}
	return page, next, nil
}
