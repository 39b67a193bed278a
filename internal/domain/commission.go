package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommissionStatus string

const (
	CommissionStatusPending    CommissionStatus = "pending"
	CommissionStatusAccepted   CommissionStatus = "accepted"
	CommissionStatusRejected   CommissionStatus = "rejected"
	CommissionStatusInProgress CommissionStatus = "in_progress"
	CommissionStatusCompleted  CommissionStatus = "completed"
	CommissionStatusCancelled  CommissionStatus = "cancelled"
)

// commissionTransitions lists, per source state, the target states and the
// participant allowed to move there.
var commissionTransitions = map[CommissionStatus]map[CommissionStatus]Role{
	CommissionStatusPending: {
		CommissionStatusAccepted:  RoleArtist,
		CommissionStatusRejected:  RoleArtist,
		CommissionStatusCancelled: RoleBuyer,
	},
	CommissionStatusAccepted: {
		CommissionStatusInProgress: RoleArtist,
		CommissionStatusCancelled:  RoleBuyer,
	},
	CommissionStatusInProgress: {
		CommissionStatusCompleted: RoleArtist,
	},
}

func (s CommissionStatus) Valid() bool {
	switch s {
	case CommissionStatusPending, CommissionStatusAccepted, CommissionStatusRejected,
		CommissionStatusInProgress, CommissionStatusCompleted, CommissionStatusCancelled:
		return true
	}
	return false
}

func (s CommissionStatus) IsTerminal() bool {
	return s == CommissionStatusRejected || s == CommissionStatusCompleted || s == CommissionStatusCancelled
}

func (s CommissionStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the status may move to next at all.
func (s CommissionStatus) CanTransitionTo(next CommissionStatus) bool {
	_, ok := commissionTransitions[s][next]
	return ok
}

// TransitionActor returns which side of the commission (RoleArtist for the
// artist, RoleBuyer for the requester) performs the move from s to next.
func (s CommissionStatus) TransitionActor(next CommissionStatus) (Role, bool) {
	r, ok := commissionTransitions[s][next]
	return r, ok
}

type Commission struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID         primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	ArtistID        primitive.ObjectID `bson:"artist_id" json:"artist_id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Budget          float64            `bson:"budget" json:"budget"`
	Deadline        *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	ReferenceImages []string           `bson:"reference_images,omitempty" json:"reference_images,omitempty"`
	Status          CommissionStatus   `bson:"status" json:"status"`
	ArtistNote      string             `bson:"artist_note,omitempty" json:"artist_note,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (c Commission) IsParticipant(userID primitive.ObjectID) bool {
	return c.BuyerID == userID || c.ArtistID == userID
}
