package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type WishlistItemInput struct {
	ItemID string `json:"item_id" validate:"required,mongodb"`
}

type WishlistService struct {
	repo    repository.WishlistRepository
	carts   *CartService
	catalog catalog
	log     *zap.Logger
}

func NewWishlistService(repo repository.WishlistRepository, carts *CartService, log *zap.Logger) *WishlistService {
	return &WishlistService{repo: repo, carts: carts, catalog: carts.catalog, log: log}
}

func (s *WishlistService) Get(ctx context.Context, p Principal) (*domain.Wishlist, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	w, err := s.repo.GetWishlist(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		now := time.Now().UTC()
		return &domain.Wishlist{UserID: p.UserID, Items: []domain.WishlistItem{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		s.log.Error("repo get wishlist error", zap.Error(err))
		return nil, err
	}
	return w, nil
}

// AddItem saves a listed artwork or course. Saving the same item twice is
// rejected.
func (s *WishlistService) AddItem(ctx context.Context, p Principal, in WishlistItemInput) (*domain.Wishlist, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	itemID, _ := primitive.ObjectIDFromHex(in.ItemID)

	item, err := s.catalog.lookup(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.visible() {
		return nil, notFound("item not found")
	}

	err = s.repo.AddItem(ctx, p.UserID, domain.WishlistItem{ItemID: itemID, ItemType: item.Type})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, invalid("item is already in your wishlist")
	}
	if err != nil {
		s.log.Error("repo add wishlist item error", zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, p)
}

func (s *WishlistService) RemoveItem(ctx context.Context, p Principal, itemID string) (*domain.Wishlist, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	id, err := parseID(itemID, "item")
	if err != nil {
		return nil, err
	}
	if err := s.remove(ctx, p.UserID, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, p)
}

func (s *WishlistService) remove(ctx context.Context, userID, itemID primitive.ObjectID) error {
	err := s.repo.RemoveItem(ctx, userID, itemID)
	if errors.Is(err, repository.ErrItemNotFound) {
		return notFound("item not in wishlist")
	}
	if err != nil {
		s.log.Error("repo remove wishlist item error", zap.Error(err))
		return err
	}
	return nil
}

// MoveToCart adds one unit of a saved item to the cart and then drops it
// from the wishlist.
func (s *WishlistService) MoveToCart(ctx context.Context, p Principal, itemID string) (*domain.Cart, error) {
	w, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	id, err := parseID(itemID, "item")
	if err != nil {
		return nil, err
	}
	if !w.Contains(id) {
		return nil, notFound("item not in wishlist")
	}

	cart, err := s.carts.AddItem(ctx, p, AddCartItemInput{ItemID: itemID, Quantity: 1})
	if err != nil {
		return nil, err
	}
	if err := s.remove(ctx, p.UserID, id); err != nil {
		return nil, err
	}
	return cart, nil
}
