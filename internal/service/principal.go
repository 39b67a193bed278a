package service

import (
	"slices"

	"github.com/fjod/artverse/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller. The zero value is an anonymous
// visitor.
type Principal struct {
	UserID primitive.ObjectID
	Role   domain.Role
}

func (p Principal) Authenticated() bool { return !p.UserID.IsZero() }

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// Owns reports whether the caller is ownerID or an admin.
func (p Principal) Owns(ownerID primitive.ObjectID) bool {
	return p.IsAdmin() || (p.Authenticated() && p.UserID == ownerID)
}

func requireRole(p Principal, roles ...domain.Role) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	if !slices.Contains(roles, p.Role) {
		return ErrForbidden
	}
	return nil
}

func requireAuth(p Principal) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

func parseID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, invalid("invalid %s id", what)
	}
	return id, nil
}
