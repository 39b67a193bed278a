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

type wishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) WishlistRepository {
	return &wishlistRepository{collection: db.Collection("wishlists")}
}

func (r *wishlistRepository) GetWishlist(ctx context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return &w, nil
}

// AddItem pushes the item unless it is already present, in which case it
// returns ErrDuplicate.
func (r *wishlistRepository) AddItem(ctx context.Context, userID primitive.ObjectID, item domain.WishlistItem) error {
	now := time.Now().UTC()
	item.AddedAt = now

	for attempt := 0; attempt < addItemAttempts; attempt++ {
		_, err := r.collection.UpdateOne(ctx,
			bson.M{"user_id": userID, "items.item_id": bson.M{"$ne": item.ItemID}},
			bson.M{
				"$push":        bson.M{"items": item},
				"$set":         bson.M{"updated_at": now},
				"$setOnInsert": bson.M{"created_at": now},
			},
			options.Update().SetUpsert(true))
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to add wishlist item: %w", err)
		}

		// The filter missed and the upsert hit the unique user_id index:
		// either the item is already there, or another request created
		// the wishlist first and the next pass will push into it.
		n, err := r.collection.CountDocuments(ctx, byOwnerAndItem(userID, item.ItemID))
		if err != nil {
			return fmt.Errorf("failed to check wishlist item: %w", err)
		}
		if n > 0 {
			return ErrDuplicate
		}
	}
	return fmt.Errorf("failed to add wishlist item: wishlist for %s kept changing", userID.Hex())
}

func (r *wishlistRepository) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "items.item_id": itemID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"item_id": itemID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}
