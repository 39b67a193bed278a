package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("document already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStaleStatus       = errors.New("status changed concurrently")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found")
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// Page is a 1-based page request. Zero values select the first page of the
// default size.
type Page struct {
	Page  int
	Limit int
}

func (p Page) bounds() (skip, limit int64) {
	l := p.Limit
	if l <= 0 {
		l = defaultPageSize
	}
	if l > maxPageSize {
		l = maxPageSize
	}
	n := p.Page
	if n < 1 {
		n = 1
	}
	return int64((n - 1) * l), int64(l)
}

type UserFilter struct {
	Role   domain.Role
	Search string
	Page
}

// ArtworkPatch holds the fields an edit changes. Nil fields keep their
// stored value; stock in particular is only written when Stock is set.
type ArtworkPatch struct {
	Title           *string
	Description     *string
	Category        *string
	Medium          *string
	Dimensions      *domain.Dimensions
	Price           *float64
	Stock           *int
	Images          []string
	Tags            []string
	Status          *domain.ArtworkStatus
	ClearReviewNote bool
}

type ArtworkFilter struct {
	ArtistID *primitive.ObjectID
	Status   domain.ArtworkStatus
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page
}

type CourseFilter struct {
	InstructorID *primitive.ObjectID
	StudentID    *primitive.ObjectID
	Status       domain.CourseStatus
	Category     string
	Level        domain.CourseLevel
	Search       string
	Sort         string
	Page
}

type CommissionFilter struct {
	BuyerID  *primitive.ObjectID
	ArtistID *primitive.ObjectID
	Status   domain.CommissionStatus
}

type OrderFilter struct {
	BuyerID  *primitive.ObjectID
	ArtistID *primitive.ObjectID
	Status   domain.OrderStatus
	Since    *time.Time
	Page
}

// OrderStats is the store-wide order summary shown to admins.
type OrderStats struct {
	Orders  int64   `bson:"orders" json:"orders"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

type ArtworkRepository interface {
	Create(ctx context.Context, artwork *domain.Artwork) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Artwork, error)
	List(ctx context.Context, filter ArtworkFilter) ([]domain.Artwork, int64, error)
	// Update applies patch only while the artwork still has status expect,
	// returning ErrStaleStatus otherwise, and returns the stored result.
	Update(ctx context.Context, id primitive.ObjectID, expect domain.ArtworkStatus, patch ArtworkPatch) (*domain.Artwork, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.ArtworkStatus, note string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	RestoreStock(ctx context.Context, id primitive.ObjectID, qty int) error
	CountByStatus(ctx context.Context, artistID *primitive.ObjectID) (map[domain.ArtworkStatus]int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]domain.Course, int64, error)
	Update(ctx context.Context, course *domain.Course) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.CourseStatus, note string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Enroll(ctx context.Context, courseID, userID primitive.ObjectID) error
	CountByStatus(ctx context.Context, instructorID *primitive.ObjectID) (map[domain.CourseStatus]int64, error)
}

type CommissionRepository interface {
	Create(ctx context.Context, commission *domain.Commission) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Commission, error)
	List(ctx context.Context, filter CommissionFilter) ([]domain.Commission, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.CommissionStatus, note string) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus, payment domain.PaymentStatus) error
	Stats(ctx context.Context) (OrderStats, error)
}

// CartRepository defines the interface for cart data operations
type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
}

type WishlistRepository interface {
	GetWishlist(ctx context.Context, userID primitive.ObjectID) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, item domain.WishlistItem) error
	RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page Page) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Store groups the Mongo-backed repositories of one database.
type Store struct {
	Users         UserRepository
	Artworks      ArtworkRepository
	Courses       CourseRepository
	Commissions   CommissionRepository
	Orders        OrderRepository
	Carts         CartRepository
	Wishlists     WishlistRepository
	Notifications NotificationRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Artworks:      NewArtworkRepository(db),
		Courses:       NewCourseRepository(db),
		Commissions:   NewCommissionRepository(db),
		Orders:        NewOrderRepository(db),
		Carts:         NewCartRepository(db),
		Wishlists:     NewWishlistRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
