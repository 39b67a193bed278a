package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// catalogItem is a purchasable thing: an artwork or a course.
type catalogItem struct {
	ID      primitive.ObjectID
	Type    domain.ItemType
	OwnerID primitive.ObjectID
	Title   string
	Image   string
	Price   float64

	artwork *domain.Artwork
	course  *domain.Course
}

// catalog resolves item ids across artworks and courses.
type catalog struct {
	artworks repository.ArtworkRepository
	courses  repository.CourseRepository
}

// lookup tries artworks first, then courses.
func (c catalog) lookup(ctx context.Context, id primitive.ObjectID) (*catalogItem, error) {
	a, err := c.artworks.GetByID(ctx, id)
	if err == nil {
		item := &catalogItem{
			ID:      a.ID,
			Type:    domain.ItemTypeArtwork,
			OwnerID: a.ArtistID,
			Title:   a.Title,
			Price:   a.Price,
			artwork: a,
		}
		if len(a.Images) > 0 {
			item.Image = a.Images[0]
		}
		return item, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup artwork: %w", err)
	}

	co, err := c.courses.GetByID(ctx, id)
	if err == nil {
		return &catalogItem{
			ID:      co.ID,
			Type:    domain.ItemTypeCourse,
			OwnerID: co.InstructorID,
			Title:   co.Title,
			Image:   co.Thumbnail,
			Price:   co.Price,
			course:  co,
		}, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("item not found")
	}
	return nil, fmt.Errorf("lookup course: %w", err)
}

// visible reports whether the item is publicly listed.
func (i *catalogItem) visible() bool {
	if i.artwork != nil {
		return i.artwork.Status == domain.ArtworkStatusApproved || i.artwork.Status == domain.ArtworkStatusSold
	}
	return i.course.Status == domain.CourseStatusApproved
}

// checkPurchase reports why buyerID cannot buy qty units of the item, if
// anything prevents it.
func (i *catalogItem) checkPurchase(buyerID primitive.ObjectID, qty int) error {
	if i.OwnerID == buyerID {
		return invalid("you cannot buy your own %s", i.Type)
	}
	switch i.Type {
	case domain.ItemTypeArtwork:
		if i.artwork.Status != domain.ArtworkStatusApproved {
			return invalid("%q is not available for purchase", i.Title)
		}
		if qty < 1 {
			return invalid("quantity must be at least 1")
		}
		if i.artwork.Stock < qty {
			return invalid("only %d of %q left in stock", i.artwork.Stock, i.Title)
		}
	case domain.ItemTypeCourse:
		if !i.course.Purchasable() {
			return invalid("%q is not available for purchase", i.Title)
		}
		if i.course.IsEnrolled(buyerID) {
			return invalid("you are already enrolled in %q", i.Title)
		}
	}
	return nil
}
