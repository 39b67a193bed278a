package http

import (
	"context"
	"io"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"github.com/fjod/artverse/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The interfaces below are the subsets of the service layer each handler
// calls. *service.XxxService satisfies them.

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	Me(ctx context.Context, p service.Principal) (*domain.User, error)
}

type UserService interface {
	GetProfile(ctx context.Context, id string) (*domain.PublicProfile, error)
	UpdateProfile(ctx context.Context, p service.Principal, in service.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, p service.Principal, in service.ChangePasswordInput) error
	ListArtists(ctx context.Context, search string, page repository.Page) ([]domain.PublicProfile, int64, error)
	ListUsers(ctx context.Context, p service.Principal, role, search string, page repository.Page) ([]domain.User, int64, error)
	SetRole(ctx context.Context, p service.Principal, id, role string) (*domain.User, error)
	DeleteUser(ctx context.Context, p service.Principal, id string) error
}

type ArtworkService interface {
	Create(ctx context.Context, p service.Principal, in service.ArtworkInput) (*domain.Artwork, error)
	Get(ctx context.Context, p service.Principal, id string) (*domain.Artwork, error)
	List(ctx context.Context, q service.ArtworkQuery) ([]domain.Artwork, int64, error)
	ListMine(ctx context.Context, p service.Principal, status string, page repository.Page) ([]domain.Artwork, int64, error)
	Update(ctx context.Context, p service.Principal, id string, in service.ArtworkUpdate) (*domain.Artwork, error)
	Delete(ctx context.Context, p service.Principal, id string) error
	Review(ctx context.Context, p service.Principal, id string, in service.ReviewInput) (*domain.Artwork, error)
}

type CourseService interface {
	Create(ctx context.Context, p service.Principal, in service.CourseInput) (*domain.Course, error)
	Get(ctx context.Context, p service.Principal, id string) (*domain.Course, error)
	List(ctx context.Context, q service.CourseQuery) ([]domain.Course, int64, error)
	ListMine(ctx context.Context, p service.Principal, status string, page repository.Page) ([]domain.Course, int64, error)
	ListEnrolled(ctx context.Context, p service.Principal, page repository.Page) ([]domain.Course, int64, error)
	Update(ctx context.Context, p service.Principal, id string, in service.CourseUpdate) (*domain.Course, error)
	Delete(ctx context.Context, p service.Principal, id string) (bool, error)
	Enroll(ctx context.Context, p service.Principal, id string) (*domain.Course, error)
	Review(ctx context.Context, p service.Principal, id string, in service.ReviewInput) (*domain.Course, error)
}

type CommissionService interface {
	Create(ctx context.Context, p service.Principal, in service.CommissionInput) (*domain.Commission, error)
	List(ctx context.Context, p service.Principal, as, status string) ([]domain.Commission, error)
	Get(ctx context.Context, p service.Principal, id string) (*domain.Commission, error)
	UpdateStatus(ctx context.Context, p service.Principal, id string, in service.CommissionStatusInput) (*domain.Commission, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, p service.Principal, in service.PlaceOrderInput) (*domain.Order, error)
	ListMine(ctx context.Context, p service.Principal, page repository.Page) ([]domain.Order, int64, error)
	ListSales(ctx context.Context, p service.Principal, status string, page repository.Page) ([]domain.Order, int64, error)
	ListAll(ctx context.Context, p service.Principal, status string, page repository.Page) ([]domain.Order, int64, error)
	Get(ctx context.Context, p service.Principal, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, p service.Principal, id string, in service.OrderStatusInput) (*domain.Order, error)
}

type CartService interface {
	View(ctx context.Context, p service.Principal) (*service.CartView, error)
	AddItem(ctx context.Context, p service.Principal, in service.AddCartItemInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, p service.Principal, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, p service.Principal, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type WishlistService interface {
	Get(ctx context.Context, p service.Principal) (*domain.Wishlist, error)
	AddItem(ctx context.Context, p service.Principal, in service.WishlistItemInput) (*domain.Wishlist, error)
	RemoveItem(ctx context.Context, p service.Principal, itemID string) (*domain.Wishlist, error)
	MoveToCart(ctx context.Context, p service.Principal, itemID string) (*domain.Cart, error)
}

type NotificationService interface {
	List(ctx context.Context, p service.Principal, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, p service.Principal, id string) error
	MarkAllRead(ctx context.Context, p service.Principal) (int64, error)
	Delete(ctx context.Context, p service.Principal, id string) error
}

type DashboardService interface {
	ArtistStats(ctx context.Context, p service.Principal) (*service.ArtistStats, error)
	AdminStats(ctx context.Context, p service.Principal) (*service.AdminStats, error)
}

type UploadService interface {
	UploadImage(ctx context.Context, p service.Principal, r io.Reader, filename string) (*service.UploadedImage, error)
}
