package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type ShippingAddress struct {
	FullName   string `bson:"full_name" json:"full_name" validate:"required"`
	Street     string `bson:"street" json:"street" validate:"required"`
	City       string `bson:"city" json:"city" validate:"required"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postal_code" json:"postal_code" validate:"required"`
	Country    string `bson:"country" json:"country" validate:"required"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type OrderItem struct {
	ItemID   primitive.ObjectID `bson:"item_id" json:"item_id"`
	ItemType ItemType           `bson:"item_type" json:"item_type"`
	ArtistID primitive.ObjectID `bson:"artist_id" json:"artist_id"`
	Title    string             `bson:"title" json:"title"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID          primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	Items            []OrderItem        `bson:"items" json:"items"`
	TotalAmount      float64            `bson:"total_amount" json:"total_amount"`
	Currency         string             `bson:"currency" json:"currency"`
	ShippingAddress  *ShippingAddress   `bson:"shipping_address,omitempty" json:"shipping_address,omitempty"`
	PaymentMethod    string             `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaymentReference string             `bson:"payment_reference,omitempty" json:"payment_reference,omitempty"`
	PaymentStatus    PaymentStatus      `bson:"payment_status" json:"payment_status"`
	Status           OrderStatus        `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Total sums price × quantity over every item.
func (o Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// ArtistTotal sums price × quantity over the items sold by artistID.
func (o Order) ArtistTotal(artistID primitive.ObjectID) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		if it.ArtistID == artistID {
			sum = sum.Add(it.Subtotal())
		}
	}
	return sum
}

// ArtistIDs returns the distinct artists in the order, in item order.
func (o Order) ArtistIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(o.Items))
	ids := make([]primitive.ObjectID, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ArtistID]; ok {
			continue
		}
		seen[it.ArtistID] = struct{}{}
		ids = append(ids, it.ArtistID)
	}
	return ids
}

func (o Order) InvolvesArtist(artistID primitive.ObjectID) bool {
	for _, it := range o.Items {
		if it.ArtistID == artistID {
			return true
		}
	}
	return false
}

// NeedsShipping reports whether any item is a physical artwork.
func (o Order) NeedsShipping() bool {
	for _, it := range o.Items {
		if it.ItemType == ItemTypeArtwork {
			return true
		}
	}
	return false
}
