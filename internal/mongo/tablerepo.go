package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/pos/internal/tables"
)

type TableRepo struct {
	collection *mongo.Collection
}

func NewTableRepo(db *mongo.Database) *TableRepo {
	return &TableRepo{
		collection: db.Collection(tablesCollection),
	}
}

func (r *TableRepo) Create(ctx context.Context, table *tables.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		return fmt.Errorf("cannot create table: %w", err)
	}

	return nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	var table tables.Table
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	return &table, nil
}

func (r *TableRepo) List(ctx context.Context, filter tables.Filter) ([]*tables.Table, error) {
	query := bson.M{}
	if filter.Floor > 0 {
		query["floor"] = filter.Floor
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return r.find(ctx, query)
}

// ListClaimed returns the tables that hold an order pointer.
func (r *TableRepo) ListClaimed(ctx context.Context) ([]*tables.Table, error) {
	return r.find(ctx, bson.M{"current_order_id": bson.M{"$ne": nil}})
}

func (r *TableRepo) find(ctx context.Context, query bson.M) ([]*tables.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "floor", Value: 1}, {Key: "number", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*tables.Table
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode tables: %w", err)
	}

	return result, nil
}

// Save replaces the stored table if its version still equals table.Version
// and bumps the version on success.
func (r *TableRepo) Save(ctx context.Context, table *tables.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	next := table.Clone()
	next.Version = table.Version + 1

	filter := bson.M{"_id": table.ID, "version": table.Version}
	result, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("cannot update table: %w", err)
	}

	if result.MatchedCount == 0 {
		return tables.ErrVersionConflict
	}

	table.Version = next.Version
	return nil
}
