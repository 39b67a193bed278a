package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ArtworkStatus string

const (
	ArtworkStatusPending  ArtworkStatus = "pending"
	ArtworkStatusApproved ArtworkStatus = "approved"
	ArtworkStatusRejected ArtworkStatus = "rejected"
	ArtworkStatusSold     ArtworkStatus = "sold"
)

func (s ArtworkStatus) Valid() bool {
	switch s {
	case ArtworkStatusPending, ArtworkStatusApproved, ArtworkStatusRejected, ArtworkStatusSold:
		return true
	}
	return false
}

type Dimensions struct {
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
	Depth  float64 `bson:"depth,omitempty" json:"depth,omitempty"`
	Unit   string  `bson:"unit" json:"unit"`
}

type Artwork struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ArtistID    primitive.ObjectID `bson:"artist_id" json:"artist_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Medium      string             `bson:"medium,omitempty" json:"medium,omitempty"`
	Dimensions  *Dimensions        `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []string           `bson:"images" json:"images"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Status      ArtworkStatus      `bson:"status" json:"status"`
	ReviewNote  string             `bson:"review_note,omitempty" json:"review_note,omitempty"`
	Views       int64              `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Purchasable reports whether qty units of the artwork can be bought right now.
func (a Artwork) Purchasable(qty int) bool {
	return a.Status == ArtworkStatusApproved && qty > 0 && a.Stock >= qty
}
