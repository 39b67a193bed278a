package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepository{collection: db.Collection("orders")}
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var o domain.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]domain.Order, int64, error) {
	filter := bson.M{}
	if f.BuyerID != nil {
		filter["buyer_id"] = *f.BuyerID
	}
	if f.ArtistID != nil {
		filter["items.artist_id"] = *f.ArtistID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Since != nil {
		filter["created_at"] = bson.M{"$gte": *f.Since}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Page != (Page{}) {
		skip, limit := f.Page.bounds()
		opts.SetSkip(skip).SetLimit(limit)
	}
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	orders := make([]domain.Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus applies only while the stored status still equals from. An
// empty payment leaves the payment status untouched.
func (r *orderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus, payment domain.PaymentStatus) error {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if payment != "" {
		set["payment_status"] = payment
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *orderRepository) Stats(ctx context.Context) (OrderStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": domain.OrderStatusCancelled}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
		}}},
	}
	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return OrderStats{}, fmt.Errorf("aggregate orders: %w", err)
	}
	defer cur.Close(ctx)

	var stats OrderStats
	if cur.Next(ctx) {
		if err := cur.Decode(&stats); err != nil {
			return OrderStats{}, fmt.Errorf("decode order stats: %w", err)
		}
	}
	return stats, cur.Err()
}
