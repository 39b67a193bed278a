package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleBuyer, RoleArtist, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// SelfAssignable reports whether a user may pick the role at registration.
func (r Role) SelfAssignable() bool {
	return r == RoleBuyer || r == RoleArtist
}

func (r Role) String() string {
	return string(r)
}

type SocialLinks struct {
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	Specialties  []string           `bson:"specialties,omitempty" json:"specialties,omitempty"`
	SocialLinks  SocialLinks        `bson:"social_links" json:"social_links"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// PublicProfile is the subset of a user shown to other users.
type PublicProfile struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Role        Role               `json:"role"`
	Bio         string             `json:"bio,omitempty"`
	Avatar      string             `json:"avatar,omitempty"`
	Location    string             `json:"location,omitempty"`
	Specialties []string           `json:"specialties,omitempty"`
	SocialLinks SocialLinks        `json:"social_links"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
		Location:    u.Location,
		Specialties: u.Specialties,
		SocialLinks: u.SocialLinks,
		CreatedAt:   u.CreatedAt,
	}
}
