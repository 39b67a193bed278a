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

type commissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(db *mongo.Database) CommissionRepository {
	return &commissionRepository{collection: db.Collection("commissions")}
}

func (r *commissionRepository) Create(ctx context.Context, c *domain.Commission) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *commissionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commission, error) {
	var c domain.Commission
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}
	return &c, nil
}

// List returns commissions newest first. When both BuyerID and ArtistID are
// set, commissions matching either side are returned.
func (r *commissionRepository) List(ctx context.Context, f CommissionFilter) ([]domain.Commission, error) {
	filter := bson.M{}
	switch {
	case f.BuyerID != nil && f.ArtistID != nil:
		filter["$or"] = bson.A{bson.M{"buyer_id": *f.BuyerID}, bson.M{"artist_id": *f.ArtistID}}
	case f.BuyerID != nil:
		filter["buyer_id"] = *f.BuyerID
	case f.ArtistID != nil:
		filter["artist_id"] = *f.ArtistID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	out := make([]domain.Commission, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode commissions: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a commission from one status to another. The write only
// applies while the stored status still equals from.
func (r *commissionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.CommissionStatus, note string) error {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if note != "" {
		set["artist_note"] = note
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update commission status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleStatus
	}
	return nil
}
