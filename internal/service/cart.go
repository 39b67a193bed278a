package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/artverse/internal/cache"
	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type AddCartItemInput struct {
	ItemID   string `json:"item_id" validate:"required,mongodb"`
	Quantity int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

// CartLine is a cart entry with the catalogue details needed to show it.
type CartLine struct {
	domain.CartItem
	Title     string  `json:"title"`
	Image     string  `json:"image,omitempty"`
	Subtotal  float64 `json:"subtotal"`
	Available bool    `json:"available"`
}

type CartView struct {
	Items     []CartLine `json:"items"`
	ItemCount int        `json:"item_count"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog catalog
	log     *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, c cache.CartCache, artworks repository.ArtworkRepository,
	courses repository.CourseRepository, log *zap.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   c,
		catalog: catalog{artworks: artworks, courses: courses},
		log:     log,
	}
}

// GetCart reads through the cache. A user without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	key := userID.Hex()
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get error", zap.Error(err)) // log cache error but continue
		}

		cart, err = s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(setCtx, userID, cart); err != nil {
				s.log.Warn("cache set error", zap.Error(err))
			}
		}()
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// load reads the cart from the store, bypassing the cache.
func (s *CartService) load(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		s.log.Error("repo get cart error", zap.Error(err))
		return nil, err
	}
	return cart, nil
}

// View resolves the caller's cart against the catalogue. Items that were
// removed from the catalogue are shown as unavailable.
func (s *CartService) View(ctx context.Context, p Principal) (*CartView, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	cart, err := s.GetCart(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLine, 0, len(cart.Items)), UpdatedAt: cart.UpdatedAt}
	total := decimal.Zero
	for _, it := range cart.Items {
		line := CartLine{CartItem: it}
		item, err := s.catalog.lookup(ctx, it.ItemID)
		switch {
		case err == nil:
			line.Title = item.Title
			line.Image = item.Image
			line.Price = item.Price
			line.Available = item.checkPurchase(p.UserID, it.Quantity) == nil
		case KindOf(err) == KindNotFound:
			line.Title = "Unavailable item"
		default:
			return nil, err
		}
		sub := decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		line.Subtotal = sub.Round(2).InexactFloat64()
		if line.Available {
			total = total.Add(sub)
		}
		view.ItemCount += it.Quantity
		view.Items = append(view.Items, line)
	}
	view.Total = total.Round(2).InexactFloat64()
	return view, nil
}

func (s *CartService) AddItem(ctx context.Context, p Principal, in AddCartItemInput) (*domain.Cart, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	itemID, _ := primitive.ObjectIDFromHex(in.ItemID)
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}

	item, err := s.catalog.lookup(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.visible() {
		return nil, notFound("item not found")
	}

	cart, err := s.load(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	existing, inCart := cart.Find(itemID)
	if item.Type == domain.ItemTypeCourse {
		if inCart {
			return nil, invalid("course is already in your cart")
		}
		qty = 1
	}
	total := qty
	if inCart {
		total += existing.Quantity
	}
	if err := item.checkPurchase(p.UserID, total); err != nil {
		return nil, err
	}

	errAdd := s.repo.AddItem(ctx, p.UserID, domain.CartItem{
		ItemID:   itemID,
		ItemType: item.Type,
		Quantity: qty,
		Price:    item.Price,
	})
	if errAdd != nil {
		s.log.Error("repo add item error", zap.Error(errAdd))
		return nil, errAdd
	}

	s.invalidateCache(p.UserID)
	return s.load(ctx, p.UserID)
}

// UpdateQuantity sets the quantity of an artwork in the cart.
func (s *CartService) UpdateQuantity(ctx context.Context, p Principal, itemID string, quantity int) (*domain.Cart, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	id, err := parseID(itemID, "item")
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	cart, err := s.load(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	entry, ok := cart.Find(id)
	if !ok {
		return nil, notFound("item not in cart")
	}
	if entry.ItemType == domain.ItemTypeCourse && quantity != 1 {
		return nil, invalid("course quantity is always 1")
	}
	if entry.ItemType == domain.ItemTypeArtwork {
		item, err := s.catalog.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := item.checkPurchase(p.UserID, quantity); err != nil {
			return nil, err
		}
	}

	errUpdate := s.repo.UpdateItemQuantity(ctx, p.UserID, id, quantity)
	if errors.Is(errUpdate, repository.ErrItemNotFound) {
		return nil, notFound("item not in cart")
	}
	if errUpdate != nil {
		s.log.Error("repo update item quantity error", zap.Error(errUpdate))
		return nil, errUpdate
	}

	s.invalidateCache(p.UserID)
	return s.load(ctx, p.UserID)
}

func (s *CartService) RemoveItem(ctx context.Context, p Principal, itemID string) (*domain.Cart, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	id, err := parseID(itemID, "item")
	if err != nil {
		return nil, err
	}
	errRemove := s.repo.RemoveItem(ctx, p.UserID, id)
	if errors.Is(errRemove, repository.ErrItemNotFound) {
		return nil, notFound("item not in cart")
	}
	if errRemove != nil {
		s.log.Error("repo remove item error", zap.Error(errRemove))
		return nil, errRemove
	}

	s.invalidateCache(p.UserID)
	return s.load(ctx, p.UserID)
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	errDelete := s.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		s.log.Error("repo delete cart error", zap.Error(errDelete))
		return errDelete
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cache invalidate error", zap.Error(err))
	}
}
