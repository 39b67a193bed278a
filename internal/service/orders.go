package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/fjod/artverse/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultCurrency = "USD"

type PlaceOrderInput struct {
	ShippingAddress  *domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod    string                  `json:"payment_method" validate:"required,oneof=card paypal bank_transfer"`
	PaymentReference string                  `json:"payment_reference" validate:"max=120"`
}

type OrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

type OrderService struct {
	orders   repository.OrderRepository
	artworks repository.ArtworkRepository
	courses  *CourseService
	carts    *CartService
	events   events.Publisher
	log      *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, artworks repository.ArtworkRepository, courses *CourseService,
	carts *CartService, pub events.Publisher, log *zap.Logger) *OrderService {
	return &OrderService{orders: orders, artworks: artworks, courses: courses, carts: carts, events: pub, log: log}
}

// PlaceOrder turns the caller's cart into an order. Every line is checked
// against the catalogue again and priced at its current price. Artwork stock
// is taken line by line and given back if a later step fails.
func (s *OrderService) PlaceOrder(ctx context.Context, p Principal, in PlaceOrderInput) (*domain.Order, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	cart, err := s.carts.load(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, invalid("cart is empty")
	}

	order := &domain.Order{
		BuyerID:          p.UserID,
		Items:            make([]domain.OrderItem, 0, len(cart.Items)),
		Currency:         defaultCurrency,
		PaymentMethod:    in.PaymentMethod,
		PaymentReference: strings.TrimSpace(in.PaymentReference),
		PaymentStatus:    domain.PaymentStatusPending,
		Status:           domain.OrderStatusPending,
	}
	var courses []*domain.Course
	for _, it := range cart.Items {
		item, err := s.carts.catalog.lookup(ctx, it.ItemID)
		if err != nil {
			if KindOf(err) == KindNotFound {
				return nil, invalid("an item in your cart is no longer available")
			}
			return nil, err
		}
		qty := it.Quantity
		if item.Type == domain.ItemTypeCourse {
			qty = 1
			courses = append(courses, item.course)
		}
		if err := item.checkPurchase(p.UserID, qty); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, domain.OrderItem{
			ItemID:   item.ID,
			ItemType: item.Type,
			ArtistID: item.OwnerID,
			Title:    item.Title,
			Image:    item.Image,
			Price:    item.Price,
			Quantity: qty,
		})
	}

	if order.NeedsShipping() {
		if in.ShippingAddress == nil {
			return nil, invalid("shipping_address is required for artwork orders")
		}
		if err := validateInput(in.ShippingAddress); err != nil {
			return nil, err
		}
		order.ShippingAddress = in.ShippingAddress
	}
	order.TotalAmount = order.Total().Round(2).InexactFloat64()
	if order.PaymentReference != "" {
		order.PaymentStatus = domain.PaymentStatusPaid
	}

	taken, err := s.takeStock(ctx, order.Items)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.log.Error("repo create order error", zap.Error(err))
		s.restoreStock(taken)
		return nil, err
	}

	for _, c := range courses {
		if err := s.courses.enroll(ctx, c, p.UserID); err != nil {
			s.log.Error("failed to enroll buyer", zap.String("order_id", order.ID.Hex()),
				zap.String("course_id", c.ID.Hex()), zap.Error(err))
		}
	}
	if err := s.carts.Clear(ctx, p.UserID); err != nil {
		s.log.Warn("failed to clear cart after order", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}

	link := "/orders/" + order.ID.Hex()
	evts := []events.Event{events.New(events.OrderPlaced, p.UserID,
		fmt.Sprintf("Your order of %s %s was placed", order.Total().StringFixed(2), order.Currency), link)}
	for _, artistID := range order.ArtistIDs() {
		evts = append(evts, events.New(events.OrderPlaced, artistID,
			fmt.Sprintf("You have a new order worth %s %s", order.ArtistTotal(artistID).StringFixed(2), order.Currency), link))
	}
	publish(ctx, s.events, s.log, evts...)

	s.log.Info("order placed", zap.String("order_id", order.ID.Hex()), zap.Float64("total", order.TotalAmount))
	return order, nil
}

// takeStock decrements stock for every artwork line. On failure the lines
// already taken are restored.
func (s *OrderService) takeStock(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	taken := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if it.ItemType != domain.ItemTypeArtwork {
			continue
		}
		if err := s.artworks.DecrementStock(ctx, it.ItemID, it.Quantity); err != nil {
			s.restoreStock(taken)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, invalid("not enough stock left for %q", it.Title)
			}
			s.log.Error("repo decrement stock error", zap.Error(err))
			return nil, err
		}
		taken = append(taken, it)
	}
	return taken, nil
}

// restoreStock runs detached from the request so a cancelled request still
// gives the stock back.
func (s *OrderService) restoreStock(items []domain.OrderItem) {
	ctx := context.Background()
	for _, it := range items {
		if it.ItemType != domain.ItemTypeArtwork {
			continue
		}
		if err := s.artworks.RestoreStock(ctx, it.ItemID, it.Quantity); err != nil {
			s.log.Error("failed to restore stock", zap.String("artwork_id", it.ItemID.Hex()),
				zap.Int("quantity", it.Quantity), zap.Error(err))
		}
	}
}

func (s *OrderService) ListMine(ctx context.Context, p Principal, page repository.Page) ([]domain.Order, int64, error) {
	if err := requireAuth(p); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repository.OrderFilter{BuyerID: &p.UserID, Page: pageOrFirst(page)})
}

// ListSales lists orders that contain the caller's work.
func (s *OrderService) ListSales(ctx context.Context, p Principal, status string, page repository.Page) ([]domain.Order, int64, error) {
	if err := requireRole(p, domain.RoleArtist, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	filter := repository.OrderFilter{ArtistID: &p.UserID, Page: pageOrFirst(page)}
	if err := setOrderStatus(&filter, status); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter)
}

func (s *OrderService) ListAll(ctx context.Context, p Principal, status string, page repository.Page) ([]domain.Order, int64, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	filter := repository.OrderFilter{Page: pageOrFirst(page)}
	if err := setOrderStatus(&filter, status); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter)
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int64, error) {
	list, total, err := s.orders.List(ctx, filter)
	if err != nil {
		s.log.Error("repo list orders error", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func setOrderStatus(f *repository.OrderFilter, status string) error {
	if status == "" {
		return nil
	}
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return invalid("unknown order status %q", status)
	}
	f.Status = st
	return nil
}

// pageOrFirst makes sure list endpoints are always paged.
func pageOrFirst(p repository.Page) repository.Page {
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Get returns an order to its buyer, to any artist with items in it and to
// admins.
func (s *OrderService) Get(ctx context.Context, p Principal, id string) (*domain.Order, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && o.BuyerID != p.UserID && !o.InvolvesArtist(p.UserID) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := parseID(id, "order")
	if err != nil {
		return nil, err
	}
	o, err := s.orders.GetByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("order not found")
	}
	if err != nil {
		s.log.Error("repo get order error", zap.Error(err))
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves an order forward (artist with items in it, or admin)
// or cancels it. The buyer may cancel only while the order is pending.
// Cancelling gives artwork stock back and refunds a paid order.
func (s *OrderService) UpdateStatus(ctx context.Context, p Principal, id string, in OrderStatusInput) (*domain.Order, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	next := domain.OrderStatus(strings.ToLower(in.Status))
	if !next.Valid() {
		return nil, invalid("unknown order status %q", in.Status)
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	isBuyer := o.BuyerID == p.UserID
	isSeller := o.InvolvesArtist(p.UserID)
	if !p.IsAdmin() && !isBuyer && !isSeller {
		return nil, ErrForbidden
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, conflict("cannot change order from %s to %s", o.Status, next)
	}
	if !p.IsAdmin() && !isSeller {
		// buyer only
		if next != domain.OrderStatusCancelled {
			return nil, forbidden("only the seller can move this order to %s", next)
		}
		if o.Status != domain.OrderStatusPending {
			return nil, conflict("order can no longer be cancelled")
		}
	}

	var payment domain.PaymentStatus
	if next == domain.OrderStatusCancelled && o.PaymentStatus == domain.PaymentStatusPaid {
		payment = domain.PaymentStatusRefunded
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, o.Status, next, payment); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, conflict("order status changed, reload and try again")
		}
		s.log.Error("repo update order status error", zap.Error(err))
		return nil, err
	}
	o.Status = next
	if payment != "" {
		o.PaymentStatus = payment
	}
	if next == domain.OrderStatusCancelled {
		s.restoreStock(o.Items)
	}

	link := "/orders/" + o.ID.Hex()
	msg := fmt.Sprintf("Order %s is now %s", shortID(o.ID), next)
	var recipients []primitive.ObjectID
	if p.UserID != o.BuyerID {
		recipients = append(recipients, o.BuyerID)
	}
	if next == domain.OrderStatusCancelled {
		for _, a := range o.ArtistIDs() {
			if a != p.UserID {
				recipients = append(recipients, a)
			}
		}
	}
	evts := make([]events.Event, 0, len(recipients))
	for _, r := range recipients {
		evts = append(evts, events.New(events.OrderStatusChanged, r, msg, link))
	}
	publish(ctx, s.events, s.log, evts...)
	return o, nil
}

func shortID(id primitive.ObjectID) string {
	h := id.Hex()
	return "#" + strings.ToUpper(h[len(h)-8:])
}
