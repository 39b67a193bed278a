package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/fjod/artverse/internal/repository"
	"go.uber.org/zap"
)

type CommissionInput struct {
	ArtistID        string     `json:"artist_id" validate:"required,mongodb"`
	Title           string     `json:"title" validate:"required,max=120"`
	Description     string     `json:"description" validate:"required,max=5000"`
	Budget          float64    `json:"budget" validate:"gte=0"`
	Deadline        *time.Time `json:"deadline"`
	ReferenceImages []string   `json:"reference_images" validate:"max=10,dive,url"`
}

type CommissionStatusInput struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=2000"`
}

type CommissionService struct {
	commissions repository.CommissionRepository
	users       repository.UserRepository
	events      events.Publisher
	log         *zap.Logger
	now         func() time.Time
}

func NewCommissionService(commissions repository.CommissionRepository, users repository.UserRepository, pub events.Publisher, log *zap.Logger) *CommissionService {
	return &CommissionService{commissions: commissions, users: users, events: pub, log: log, now: time.Now}
}

func (s *CommissionService) Create(ctx context.Context, p Principal, in CommissionInput) (*domain.Commission, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	artistID, err := parseID(in.ArtistID, "artist")
	if err != nil {
		return nil, err
	}
	if artistID == p.UserID {
		return nil, invalid("you cannot commission yourself")
	}
	if in.Deadline != nil && !in.Deadline.After(s.now()) {
		return nil, invalid("deadline must be in the future")
	}

	artist, err := s.users.GetByID(ctx, artistID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("artist not found")
	}
	if err != nil {
		s.log.Error("repo get user error", zap.Error(err))
		return nil, err
	}
	if artist.Role != domain.RoleArtist {
		return nil, invalid("commissions can only be requested from artists")
	}

	c := &domain.Commission{
		BuyerID:         p.UserID,
		ArtistID:        artistID,
		Title:           clean(in.Title),
		Description:     clean(in.Description),
		Budget:          in.Budget,
		Deadline:        in.Deadline,
		ReferenceImages: in.ReferenceImages,
		Status:          domain.CommissionStatusPending,
	}
	if c.Title == "" || c.Description == "" {
		return nil, invalid("title and description are required")
	}
	if err := s.commissions.Create(ctx, c); err != nil {
		s.log.Error("repo create commission error", zap.Error(err))
		return nil, err
	}

	publish(ctx, s.events, s.log, events.New(events.CommissionCreated, artistID,
		fmt.Sprintf("New commission request: \"%s\"", c.Title), "/commissions/"+c.ID.Hex()))
	return c, nil
}

// List returns the caller's commissions. as selects "buyer" (requested by
// the caller), "artist" (addressed to the caller) or both when empty.
// Admins see every commission unless as is given.
func (s *CommissionService) List(ctx context.Context, p Principal, as, status string) ([]domain.Commission, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	var filter repository.CommissionFilter
	switch as {
	case "buyer":
		filter.BuyerID = &p.UserID
	case "artist":
		filter.ArtistID = &p.UserID
	case "":
		if !p.IsAdmin() {
			filter.BuyerID = &p.UserID
			filter.ArtistID = &p.UserID
		}
	default:
		return nil, invalid("as must be buyer or artist")
	}
	if status != "" {
		st := domain.CommissionStatus(status)
		if !st.Valid() {
			return nil, invalid("unknown commission status %q", status)
		}
		filter.Status = st
	}

	list, err := s.commissions.List(ctx, filter)
	if err != nil {
		s.log.Error("repo list commissions error", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *CommissionService) Get(ctx context.Context, p Principal, id string) (*domain.Commission, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !c.IsParticipant(p.UserID) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *CommissionService) load(ctx context.Context, id string) (*domain.Commission, error) {
	cid, err := parseID(id, "commission")
	if err != nil {
		return nil, err
	}
	c, err := s.commissions.GetByID(ctx, cid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("commission not found")
	}
	if err != nil {
		s.log.Error("repo get commission error", zap.Error(err))
		return nil, err
	}
	return c, nil
}

// UpdateStatus moves the commission along its workflow. The artist answers
// and fulfils, the requester may cancel before work starts, and an admin
// may make any legal move.
func (s *CommissionService) UpdateStatus(ctx context.Context, p Principal, id string, in CommissionStatusInput) (*domain.Commission, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	next := domain.CommissionStatus(strings.ToLower(in.Status))
	if !next.Valid() {
		return nil, invalid("unknown commission status %q", in.Status)
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !c.IsParticipant(p.UserID) {
		return nil, ErrForbidden
	}

	actor, ok := c.Status.TransitionActor(next)
	if !ok {
		return nil, conflict("cannot change commission from %s to %s", c.Status, next)
	}
	if !p.IsAdmin() {
		allowed := (actor == domain.RoleArtist && p.UserID == c.ArtistID) ||
			(actor == domain.RoleBuyer && p.UserID == c.BuyerID)
		if !allowed {
			return nil, forbidden("only the %s can move this commission to %s", commissionSide(actor), next)
		}
	}

	// Only the artist's own words are kept as the artist note; anyone else's
	// note travels with the notification.
	note := clean(in.Note)
	artistNote := c.ArtistNote
	if p.UserID == c.ArtistID && note != "" {
		artistNote = note
	}
	if err := s.commissions.UpdateStatus(ctx, c.ID, c.Status, next, artistNote); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, conflict("commission status changed, reload and try again")
		}
		s.log.Error("repo update commission status error", zap.Error(err))
		return nil, err
	}
	c.Status = next
	c.ArtistNote = artistNote
	c.UpdatedAt = s.now().UTC()

	recipient := c.BuyerID
	if p.UserID == c.BuyerID {
		recipient = c.ArtistID
	}
	msg := fmt.Sprintf("Commission \"%s\" is now %s", c.Title, humanStatus(string(next)))
	if note != "" {
		msg += ": " + note
	}
	publish(ctx, s.events, s.log, events.New(events.CommissionStatusChanged, recipient, msg, "/commissions/"+c.ID.Hex()))
	return c, nil
}

func commissionSide(r domain.Role) string {
	if r == domain.RoleBuyer {
		return "requester"
	}
	return "artist"
}

func humanStatus(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
