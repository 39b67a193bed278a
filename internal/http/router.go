package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Tokens         TokenVerifier
	Users          UserLookup
	CookieName     string
	CORSOrigins    []string
	RequestTimeout time.Duration
	// HealthCheck reports whether backing stores are reachable. Optional.
	HealthCheck func(ctx context.Context) error
	Log         *zap.Logger
}

type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Artworks      *ArtworkHandler
	Courses       *CourseHandler
	Commissions   *CommissionHandler
	Orders        *OrderHandler
	Cart          *CartHandler
	Wishlist      *WishlistHandler
	Notifications *NotificationHandler
	Dashboard     *DashboardHandler
	Uploads       *UploadHandler
}

// NewRouter mounts every API route under /api and wraps the result in
// OpenTelemetry instrumentation.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	log := cfg.Log
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Authenticate(cfg.Tokens, cfg.Users, cfg.CookieName, log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, log, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, log, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", health(cfg.HealthCheck, log))

	authed := RequireAuth(log)
	artist := RequireRole(log, domain.RoleArtist, domain.RoleAdmin)
	admin := RequireRole(log, domain.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health(cfg.HealthCheck, log))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.With(authed).Get("/me", h.Auth.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/artists", h.Users.ListArtists)
			r.With(authed).Put("/profile", h.Users.UpdateProfile)
			r.With(authed).Put("/password", h.Users.ChangePassword)
			r.With(admin).Get("/", h.Users.ListUsers)
			r.Get("/{id}", h.Users.GetProfile)
			r.With(admin).Patch("/{id}/role", h.Users.SetRole)
			r.With(admin).Delete("/{id}", h.Users.DeleteUser)
		})

		r.Route("/artworks", func(r chi.Router) {
			r.Get("/", h.Artworks.List)
			r.With(artist).Get("/mine", h.Artworks.ListMine)
			r.With(artist).Post("/", h.Artworks.Create)
			r.Get("/{id}", h.Artworks.Get)
			r.With(artist).Put("/{id}", h.Artworks.Update)
			r.With(artist).Delete("/{id}", h.Artworks.Delete)
			r.With(admin).Patch("/{id}/status", h.Artworks.Review)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.Courses.List)
			r.With(artist).Get("/mine", h.Courses.ListMine)
			r.With(authed).Get("/enrolled", h.Courses.ListEnrolled)
			r.With(artist).Post("/", h.Courses.Create)
			r.Get("/{id}", h.Courses.Get)
			r.With(artist).Put("/{id}", h.Courses.Update)
			r.With(artist).Delete("/{id}", h.Courses.Delete)
			r.With(authed).Post("/{id}/enroll", h.Courses.Enroll)
			r.With(admin).Patch("/{id}/status", h.Courses.Review)
		})

		r.Route("/commissions", func(r chi.Router) {
			r.Use(authed)
			r.Post("/", h.Commissions.Create)
			r.Get("/", h.Commissions.List)
			r.Get("/{id}", h.Commissions.Get)
			r.Patch("/{id}/status", h.Commissions.UpdateStatus)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authed)
			r.Post("/", h.Orders.PlaceOrder)
			r.Get("/", h.Orders.ListMine)
			r.With(artist).Get("/sales", h.Orders.ListSales)
			r.With(admin).Get("/all", h.Orders.ListAll)
			r.Get("/{id}", h.Orders.Get)
			r.Patch("/{id}/status", h.Orders.UpdateStatus)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{itemId}", h.Cart.UpdateQuantity)
			r.Delete("/items/{itemId}", h.Cart.RemoveItem)
			r.Delete("/", h.Cart.ClearCart)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", h.Wishlist.Get)
			r.Post("/items", h.Wishlist.AddItem)
			r.Delete("/items/{itemId}", h.Wishlist.RemoveItem)
			r.Post("/items/{itemId}/move-to-cart", h.Wishlist.MoveToCart)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", h.Notifications.List)
			r.Patch("/read-all", h.Notifications.MarkAllRead)
			r.Patch("/{id}/read", h.Notifications.MarkRead)
			r.Delete("/{id}", h.Notifications.Delete)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.With(artist).Get("/artist", h.Dashboard.Artist)
			r.With(admin).Get("/admin", h.Dashboard.Admin)
		})

		r.With(authed).Post("/uploads/images", h.Uploads.UploadImage)
	})

	return otelhttp.NewHandler(r, "artverse-api")
}

type HealthResponse struct {
	Status string `json:"status"`
}

func health(check func(context.Context) error, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				log.Warn("health check failed", zap.Error(err))
				respondJSON(w, log, http.StatusServiceUnavailable, Envelope{Success: false, Data: HealthResponse{Status: "unavailable"}, Error: "database unreachable"})
				return
			}
		}
		respondData(w, log, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
