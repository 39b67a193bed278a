package service

import (
	"context"
	"errors"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/fjod/artverse/internal/repository"
	"go.uber.org/zap"
)

type ArtworkInput struct {
	Title       string             `json:"title" validate:"required,max=120"`
	Description string             `json:"description" validate:"max=5000"`
	Category    string             `json:"category" validate:"required,max=60"`
	Medium      string             `json:"medium" validate:"max=80"`
	Dimensions  *domain.Dimensions `json:"dimensions"`
	Price       float64            `json:"price" validate:"gte=0"`
	Stock       *int               `json:"stock" validate:"omitempty,gte=0"`
	Images      []string           `json:"images" validate:"max=10,dive,url"`
	Tags        []string           `json:"tags" validate:"max=20,dive,max=40"`
}

type ArtworkUpdate struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=120"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Category    *string            `json:"category" validate:"omitempty,min=1,max=60"`
	Medium      *string            `json:"medium" validate:"omitempty,max=80"`
	Dimensions  *domain.Dimensions `json:"dimensions"`
	Price       *float64           `json:"price" validate:"omitempty,gte=0"`
	Stock       *int               `json:"stock" validate:"omitempty,gte=0"`
	Images      []string           `json:"images" validate:"omitempty,max=10,dive,url"`
	Tags        []string           `json:"tags" validate:"omitempty,max=20,dive,max=40"`
}

type ReviewInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note" validate:"max=1000"`
}

// ArtworkQuery is the public catalogue search.
type ArtworkQuery struct {
	Category string
	ArtistID string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	repository.Page
}

type ArtworkService struct {
	artworks repository.ArtworkRepository
	images   ImageHost
	events   events.Publisher
	log      *zap.Logger
}

func NewArtworkService(artworks repository.ArtworkRepository, images ImageHost, pub events.Publisher, log *zap.Logger) *ArtworkService {
	return &ArtworkService{artworks: artworks, images: images, events: pub, log: log}
}

func (s *ArtworkService) Create(ctx context.Context, p Principal, in ArtworkInput) (*domain.Artwork, error) {
	if err := requireRole(p, domain.RoleArtist, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateDimensions(in.Dimensions); err != nil {
		return nil, err
	}

	stock := 1
	if in.Stock != nil {
		stock = *in.Stock
	}
	a := &domain.Artwork{
		ArtistID:    p.UserID,
		Title:       clean(in.Title),
		Description: clean(in.Description),
		Category:    clean(in.Category),
		Medium:      clean(in.Medium),
		Dimensions:  in.Dimensions,
		Price:       in.Price,
		Stock:       stock,
		Images:      in.Images,
		Tags:        cleanAll(in.Tags),
		Status:      domain.ArtworkStatusPending,
	}
	if a.Title == "" {
		return nil, invalid("title is required")
	}
	if err := s.artworks.Create(ctx, a); err != nil {
		s.log.Error("repo create artwork error", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *ArtworkService) load(ctx context.Context, id string) (*domain.Artwork, error) {
	aid, err := parseID(id, "artwork")
	if err != nil {
		return nil, err
	}
	a, err := s.artworks.GetByID(ctx, aid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("artwork not found")
	}
	if err != nil {
		s.log.Error("repo get artwork error", zap.Error(err))
		return nil, err
	}
	return a, nil
}

// Get returns a listed artwork to anyone, and an unlisted one only to its
// artist or an admin. Views by other users are counted.
func (s *ArtworkService) Get(ctx context.Context, p Principal, id string) (*domain.Artwork, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	listed := a.Status == domain.ArtworkStatusApproved || a.Status == domain.ArtworkStatusSold
	if !listed && !p.Owns(a.ArtistID) {
		return nil, notFound("artwork not found")
	}
	if listed && p.UserID != a.ArtistID {
		if err := s.artworks.IncrementViews(ctx, a.ID); err != nil {
			s.log.Warn("failed to count artwork view", zap.String("artwork_id", a.ID.Hex()), zap.Error(err))
		} else {
			a.Views++
		}
	}
	return a, nil
}

func (s *ArtworkService) List(ctx context.Context, q ArtworkQuery) ([]domain.Artwork, int64, error) {
	filter := repository.ArtworkFilter{
		Status:   domain.ArtworkStatusApproved,
		Category: q.Category,
		Search:   q.Search,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Sort:     q.Sort,
		Page:     q.Page,
	}
	if q.ArtistID != "" {
		id, err := parseID(q.ArtistID, "artist")
		if err != nil {
			return nil, 0, err
		}
		filter.ArtistID = &id
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, 0, invalid("min_price must not exceed max_price")
	}
	list, total, err := s.artworks.List(ctx, filter)
	if err != nil {
		s.log.Error("repo list artworks error", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// ListMine lists the caller's artworks in every status.
func (s *ArtworkService) ListMine(ctx context.Context, p Principal, status string, page repository.Page) ([]domain.Artwork, int64, error) {
	if err := requireRole(p, domain.RoleArtist, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	filter := repository.ArtworkFilter{ArtistID: &p.UserID, Page: page}
	if status != "" {
		st := domain.ArtworkStatus(status)
		if !st.Valid() {
			return nil, 0, invalid("unknown artwork status %q", status)
		}
		filter.Status = st
	}
	list, total, err := s.artworks.List(ctx, filter)
	if err != nil {
		s.log.Error("repo list artworks error", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

// Update applies the given fields. When the artist edits a reviewed
// artwork it goes back to review. Stock is only written when the edit sets
// it, and a sold artwork stays sold until it is restocked.
func (s *ArtworkService) Update(ctx context.Context, p Principal, id string, in ArtworkUpdate) (*domain.Artwork, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateDimensions(in.Dimensions); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Owns(a.ArtistID) {
		return nil, ErrForbidden
	}

	patch := repository.ArtworkPatch{
		Dimensions: in.Dimensions,
		Price:      in.Price,
		Stock:      in.Stock,
		Images:     in.Images,
	}
	if in.Title != nil {
		title := clean(*in.Title)
		if title == "" {
			return nil, invalid("title is required")
		}
		patch.Title = &title
	}
	if in.Description != nil {
		patch.Description = ptr(clean(*in.Description))
	}
	if in.Category != nil {
		patch.Category = ptr(clean(*in.Category))
	}
	if in.Medium != nil {
		patch.Medium = ptr(clean(*in.Medium))
	}
	if in.Tags != nil {
		patch.Tags = cleanAll(in.Tags)
	}
	if next := editedStatus(p, a, in.Stock); next != a.Status {
		patch.Status = &next
		patch.ClearReviewNote = next == domain.ArtworkStatusPending
	}

	updated, err := s.artworks.Update(ctx, a.ID, a.Status, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound("artwork not found")
	case errors.Is(err, repository.ErrStaleStatus):
		return nil, conflict("artwork changed while you were editing it, reload and try again")
	case err != nil:
		s.log.Error("repo update artwork error", zap.Error(err))
		return nil, err
	}
	return updated, nil
}

// editedStatus is the status an artwork has after an edit by p that sets
// stock (nil when unchanged).
func editedStatus(p Principal, a *domain.Artwork, stock *int) domain.ArtworkStatus {
	listed := a.Status == domain.ArtworkStatusApproved || a.Status == domain.ArtworkStatusSold
	restocked := stock != nil && *stock > 0
	switch {
	case listed && stock != nil && *stock == 0:
		return domain.ArtworkStatusSold
	case a.Status == domain.ArtworkStatusSold && !restocked:
		return domain.ArtworkStatusSold
	case p.UserID == a.ArtistID:
		return domain.ArtworkStatusPending
	case a.Status == domain.ArtworkStatusSold:
		return domain.ArtworkStatusApproved
	}
	return a.Status
}

func ptr[T any](v T) *T { return &v }

func (s *ArtworkService) Delete(ctx context.Context, p Principal, id string) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !p.Owns(a.ArtistID) {
		return ErrForbidden
	}
	if err := s.artworks.Delete(ctx, a.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("artwork not found")
		}
		s.log.Error("repo delete artwork error", zap.Error(err))
		return err
	}
	deleteHostedImages(ctx, s.images, s.log, a.Images)
	return nil
}

// Review approves or rejects a pending artwork and notifies the artist.
func (s *ArtworkService) Review(ctx context.Context, p Principal, id string, in ReviewInput) (*domain.Artwork, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == domain.ArtworkStatusSold {
		return nil, conflict("sold artworks cannot be reviewed")
	}

	status := domain.ArtworkStatus(in.Status)
	if status == domain.ArtworkStatusApproved && a.Stock == 0 {
		return nil, invalid("an artwork without stock cannot be approved")
	}
	note := clean(in.Note)
	if err := s.artworks.SetStatus(ctx, a.ID, status, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("artwork not found")
		}
		s.log.Error("repo set artwork status error", zap.Error(err))
		return nil, err
	}
	a.Status = status
	a.ReviewNote = note

	msg := "Your artwork \"" + a.Title + "\" was approved and is now listed"
	if status == domain.ArtworkStatusRejected {
		msg = "Your artwork \"" + a.Title + "\" was rejected"
		if note != "" {
			msg += ": " + note
		}
	}
	publish(ctx, s.events, s.log, events.New(events.ArtworkReviewed, a.ArtistID, msg, "/artworks/"+a.ID.Hex()))
	return a, nil
}

func validateDimensions(d *domain.Dimensions) error {
	if d == nil {
		return nil
	}
	if d.Width < 0 || d.Height < 0 || d.Depth < 0 {
		return invalid("dimensions must not be negative")
	}
	switch d.Unit {
	case "", "cm", "in", "mm", "px":
	default:
		return invalid("dimensions unit must be one of: cm, in, mm, px")
	}
	return nil
}

// deleteHostedImages removes images that live on the image host. Failures
// are logged only.
func deleteHostedImages(ctx context.Context, host ImageHost, log *zap.Logger, urls []string) {
	if host == nil {
		return
	}
	for _, u := range urls {
		imageID, ok := host.ImageID(u)
		if !ok {
			continue
		}
		if err := host.Delete(ctx, imageID); err != nil {
			log.Warn("failed to delete hosted image", zap.String("image_id", imageID), zap.Error(err))
		}
	}
}
