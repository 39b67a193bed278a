package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItemType string

const (
	ItemTypeArtwork ItemType = "artwork"
	ItemTypeCourse  ItemType = "course"
)

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ItemID   primitive.ObjectID `bson:"item_id" json:"item_id"`
	ItemType ItemType           `bson:"item_type" json:"item_type"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
	AddedAt  time.Time          `bson:"added_at" json:"added_at"`
}

func (c Cart) Find(itemID primitive.ObjectID) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return CartItem{}, false
}

type Wishlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items     []WishlistItem     `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type WishlistItem struct {
	ItemID   primitive.ObjectID `bson:"item_id" json:"item_id"`
	ItemType ItemType           `bson:"item_type" json:"item_type"`
	AddedAt  time.Time          `bson:"added_at" json:"added_at"`
}

func (w Wishlist) Contains(itemID primitive.ObjectID) bool {
	for _, it := range w.Items {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}
