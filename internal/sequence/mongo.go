package sequence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGenerator keeps one document per key in the counters collection and
// increments it with findOneAndUpdate, which is atomic per document.
type MongoGenerator struct {
	collection *mongo.Collection
}

func NewMongoGenerator(db *mongo.Database) *MongoGenerator {
	return &MongoGenerator{
		collection: db.Collection("counters"),
	}
}

type counterDoc struct {
	Key string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func (g *MongoGenerator) Next(ctx context.Context, key string) (int64, error) {
	filter := bson.M{"_id": key}
	update := bson.M{
		"$inc":         bson.M{"seq": 1},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	if err := g.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return 0, fmt.Errorf("cannot increment counter %s: %w", key, err)
	}
	return doc.Seq, nil
}
