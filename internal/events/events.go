// Package events carries domain events from the services to the
// notification inbox, either through Kafka or in process.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Type string

const (
	OrderPlaced             Type = "order.placed"
	OrderStatusChanged      Type = "order.status_changed"
	CommissionCreated       Type = "commission.created"
	CommissionStatusChanged Type = "commission.status_changed"
	ArtworkReviewed         Type = "artwork.reviewed"
	CourseReviewed          Type = "course.reviewed"
	CourseEnrolled          Type = "course.enrolled"
)

// Event is addressed to a single user.
type Event struct {
	ID          string             `json:"id"`
	Type        Type               `json:"type"`
	RecipientID primitive.ObjectID `json:"recipient_id"`
	Message     string             `json:"message"`
	Link        string             `json:"link,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func New(t Type, recipient primitive.ObjectID, message, link string) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		RecipientID: recipient,
		Message:     message,
		Link:        link,
		OccurredAt:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type Handler interface {
	HandleEvent(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}
