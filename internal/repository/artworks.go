package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type artworkRepository struct {
	collection *mongo.Collection
}

func NewArtworkRepository(db *mongo.Database) ArtworkRepository {
	return &artworkRepository{collection: db.Collection("artworks")}
}

func (r *artworkRepository) Create(ctx context.Context, a *domain.Artwork) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Images == nil {
		a.Images = []string{}
	}

	res, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to create artwork: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *artworkRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Artwork, error) {
	var a domain.Artwork
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get artwork: %w", err)
	}
	return &a, nil
}

func artworkQuery(f ArtworkFilter) bson.M {
	filter := bson.M{}
	if f.ArtistID != nil {
		filter["artist_id"] = *f.ArtistID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		filter["$text"] = bson.M{"$search": s}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func listSort(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case "popular":
		return bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: -1}}
	case "oldest":
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *artworkRepository) List(ctx context.Context, f ArtworkFilter) ([]domain.Artwork, int64, error) {
	filter := artworkQuery(f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count artworks: %w", err)
	}

	skip, limit := f.Page.bounds()
	opts := options.Find().SetSort(listSort(f.Sort)).SetSkip(skip).SetLimit(limit)
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list artworks: %w", err)
	}
	artworks := make([]domain.Artwork, 0)
	if err := cur.All(ctx, &artworks); err != nil {
		return nil, 0, fmt.Errorf("failed to decode artworks: %w", err)
	}
	return artworks, total, nil
}

func (r *artworkRepository) Update(ctx context.Context, id primitive.ObjectID, expect domain.ArtworkStatus, patch ArtworkPatch) (*domain.Artwork, error) {
	set := patch.fields()
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var after domain.Artwork
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": expect}, bson.M{"$set": set}, opts).Decode(&after)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return nil, fmt.Errorf("failed to check artwork: %w", cerr)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrStaleStatus
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update artwork: %w", err)
	}
	return &after, nil
}

func (p ArtworkPatch) fields() bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Medium != nil {
		set["medium"] = *p.Medium
	}
	if p.Dimensions != nil {
		set["dimensions"] = p.Dimensions
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	if p.Tags != nil {
		set["tags"] = p.Tags
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.ClearReviewNote {
		set["review_note"] = ""
	}
	return set
}

func (r *artworkRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.ArtworkStatus, note string) error {
	update := bson.M{"$set": bson.M{
		"status":      status,
		"review_note": note,
		"updated_at":  time.Now().UTC(),
	}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to set artwork status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *artworkRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *artworkRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// DecrementStock takes qty units off an approved artwork only when enough
// stock remains, and flips the artwork to sold when the last unit goes.
func (r *artworkRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":    id,
		"status": domain.ArtworkStatusApproved,
		"stock":  bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var after domain.Artwork
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&after)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInsufficientStock
		}
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if after.Stock == 0 {
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "stock": 0},
			bson.M{"$set": bson.M{"status": domain.ArtworkStatusSold}})
		if err != nil {
			return fmt.Errorf("failed to mark artwork sold: %w", err)
		}
	}
	return nil
}

// RestoreStock gives qty units back, reopening a sold artwork for sale.
func (r *artworkRepository) RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stock", Value: bson.D{{Key: "$add", Value: bson.A{"$stock", qty}}}},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", domain.ArtworkStatusSold}}},
				domain.ArtworkStatusApproved,
				"$status",
			}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *artworkRepository) CountByStatus(ctx context.Context, artistID *primitive.ObjectID) (map[domain.ArtworkStatus]int64, error) {
	filter := bson.M{}
	if artistID != nil {
		filter["artist_id"] = *artistID
	}
	out := map[domain.ArtworkStatus]int64{}
	err := countBy(ctx, r.collection, filter, "$status", func(key string, n int64) {
		out[domain.ArtworkStatus(key)] = n
	})
	return out, err
}
