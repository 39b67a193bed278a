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

// addItemAttempts bounds the retry when two requests create the same cart.
const addItemAttempts = 2

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &cartRepository{collection: db.Collection("carts")}
}

func byOwner(userID primitive.ObjectID) bson.M { return bson.M{"user_id": userID} }

func byOwnerAndItem(userID, itemID primitive.ObjectID) bson.M {
	return bson.M{"user_id": userID, "items.item_id": itemID}
}

func (r *cartRepository) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	cart := new(domain.Cart)
	err := r.collection.FindOne(ctx, byOwner(userID)).Decode(cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cart %s: %w", userID.Hex(), err)
	}
	return cart, nil
}

// AddItem adds item.Quantity units of the item, creating the cart on first
// use. An existing line has its quantity increased and its price refreshed.
func (r *cartRepository) AddItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error {
	now := time.Now().UTC()
	item.AddedAt = now

	for attempt := 0; attempt < addItemAttempts; attempt++ {
		bumped, err := r.bumpLine(ctx, userID, item, now)
		if err != nil {
			return err
		}
		if bumped {
			return nil
		}

		// The unique user_id index turns a concurrent upsert into a
		// duplicate key error; the next pass then finds the line.
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"user_id": userID, "items.item_id": bson.M{"$ne": item.ItemID}},
			bson.M{
				"$push":        bson.M{"items": item},
				"$set":         bson.M{"updated_at": now},
				"$setOnInsert": bson.M{"created_at": now},
			},
			options.Update().SetUpsert(true))
		switch {
		case err == nil:
			return nil
		case !mongo.IsDuplicateKeyError(err):
			return fmt.Errorf("push cart line %s: %w", item.ItemID.Hex(), err)
		}
	}
	return fmt.Errorf("add cart line %s: cart %s kept changing", item.ItemID.Hex(), userID.Hex())
}

func (r *cartRepository) bumpLine(ctx context.Context, userID primitive.ObjectID, item domain.CartItem, now time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, byOwnerAndItem(userID, item.ItemID), bson.M{
		"$inc": bson.M{"items.$.quantity": item.Quantity},
		"$set": bson.M{"items.$.price": item.Price, "updated_at": now},
	})
	if err != nil {
		return false, fmt.Errorf("bump cart line %s: %w", item.ItemID.Hex(), err)
	}
	return res.MatchedCount > 0, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	res, err := r.collection.UpdateOne(ctx, byOwnerAndItem(userID, itemID), bson.M{
		"$set": bson.M{"items.$.quantity": quantity, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set cart line %s quantity: %w", itemID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, byOwnerAndItem(userID, itemID), bson.M{
		"$pull": bson.M{"items": bson.M{"item_id": itemID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("remove cart line %s: %w", itemID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, byOwner(userID))
	if err != nil {
		return fmt.Errorf("delete cart %s: %w", userID.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}
