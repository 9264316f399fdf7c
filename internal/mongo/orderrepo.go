package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection(ordersCollection),
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return order.ErrDuplicateNumber
		}
		return fmt.Errorf("cannot create order: %w", err)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	query := listQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot count orders: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * filter.Limit)).SetLimit(int64(filter.Limit))
	}

	result, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func listQuery(filter order.ListFilter) bson.M {
	query := bson.M{}
	if filter.TableID != uuid.Nil {
		query["table_id"] = filter.TableID
	}
	if filter.ActorID != uuid.Nil {
		query["actor_id"] = filter.ActorID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	created := bson.M{}
	if !filter.From.IsZero() {
		created["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		created["$lte"] = filter.To
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query["$or"] = bson.A{
			bson.M{"order_number": pattern},
			bson.M{"notes": pattern},
		}
	}
	return query
}

func searchPattern(search string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}

func (r *OrderRepo) ListByTable(ctx context.Context, tableID uuid.UUID, statuses ...orderstatus.Status) ([]*order.Order, error) {
	query := bson.M{"table_id": tableID}
	if len(statuses) > 0 {
		query["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, query, opts)
}

func (r *OrderRepo) ListByStatus(ctx context.Context, statuses ...orderstatus.Status) ([]*order.Order, error) {
	query := bson.M{}
	if len(statuses) > 0 {
		query["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *OrderRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*order.Order, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	return result, nil
}

// Save replaces the stored order if its version still equals o.Version and
// bumps the version on success.
func (r *OrderRepo) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	next := o.Clone()
	next.Version = o.Version + 1

	filter := bson.M{"_id": o.ID, "version": o.Version}
	result, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}

	if result.MatchedCount == 0 {
		return order.ErrVersionConflict
	}

	o.Version = next.Version
	return nil
}

// Delete removes the order at its loaded version. Deleting an order that is
// already gone is not an error.
func (r *OrderRepo) Delete(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": o.ID, "version": o.Version})
	if err != nil {
		return fmt.Errorf("cannot delete order: %w", err)
	}
	if result.DeletedCount > 0 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": o.ID})
	if err != nil {
		return fmt.Errorf("cannot check deleted order: %w", err)
	}
	if n > 0 {
		return order.ErrVersionConflict
	}
	return nil
}
