package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/artverse/internal/auth"
	"github.com/fjod/artverse/internal/cache"
	"github.com/fjod/artverse/internal/config"
	"github.com/fjod/artverse/internal/events"
	h "github.com/fjod/artverse/internal/http"
	"github.com/fjod/artverse/internal/imagehost"
	"github.com/fjod/artverse/internal/repository"
	"github.com/fjod/artverse/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

Redis (REDIS_ADDR), Kafka (KAFKA_BROKERS) and Cloudflare Images
(CF_ACCOUNT_ID, CF_API_TOKEN) are optional. Without Redis carts are read
straight from MongoDB, without Kafka notifications are written in-process,
and without Cloudflare image uploads answer 503.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(log)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	db, err := connectMongo(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer disconnectMongo(db, log)

	if err := repository.CreateIndexes(ctx, db); err != nil {
		log.Warn("failed to ensure indexes", zap.Error(err))
	}
	store := repository.NewStore(db)

	cartCache, closeCache := newCartCache(ctx, cfg, log)
	defer closeCache()

	notifications := service.NewNotificationService(store.Notifications, log)

	// Events go through Kafka when brokers are configured; the consumer feeds
	// them back into the notification inbox.
	var publisher events.Publisher
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	consumerDone := make(chan struct{})
	if cfg.KafkaEnabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn("error closing kafka writer", zap.Error(err))
			}
		}()
		publisher = kp

		consumer := events.NewConsumer(notifications, log, cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Brokers...)
		go func() {
			defer close(consumerDone)
			consumer.Run(consumerCtx)
		}()
		defer consumer.Close()
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		publisher = events.NewDirectPublisher(notifications)
		close(consumerDone)
		log.Info("kafka not configured, delivering notifications in-process")
	}

	var images service.ImageHost
	if cfg.ImageHostEnabled() {
		images = imagehost.NewClient(imagehost.Config{
			AccountID:   cfg.Cloudflare.AccountID,
			APIToken:    cfg.Cloudflare.APIToken,
			AccountHash: cfg.Cloudflare.AccountHash,
		})
	} else {
		log.Info("cloudflare images not configured, uploads disabled")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	carts := service.NewCartService(store.Carts, cartCache, store.Artworks, store.Courses, log)
	courses := service.NewCourseService(store.Courses, publisher, log)

	handlers := h.Handlers{
		Auth: h.NewAuthHandler(service.NewAuthService(store.Users, tokens, log),
			h.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}, cfg.MaxBodyBytes, log),
		Users:       h.NewUserHandler(service.NewUserService(store.Users, log), cfg.MaxBodyBytes, log),
		Artworks:    h.NewArtworkHandler(service.NewArtworkService(store.Artworks, images, publisher, log), cfg.MaxBodyBytes, log),
		Courses:     h.NewCourseHandler(courses, cfg.MaxBodyBytes, log),
		Commissions: h.NewCommissionHandler(service.NewCommissionService(store.Commissions, store.Users, publisher, log), cfg.MaxBodyBytes, log),
		Orders: h.NewOrderHandler(service.NewOrderService(store.Orders, store.Artworks, courses, carts, publisher, log),
			cfg.MaxBodyBytes, log),
		Cart:          h.NewCartHandler(carts, cfg.MaxBodyBytes, log),
		Wishlist:      h.NewWishlistHandler(service.NewWishlistService(store.Wishlists, carts, log), cfg.MaxBodyBytes, log),
		Notifications: h.NewNotificationHandler(notifications, log),
		Dashboard:     h.NewDashboardHandler(service.NewDashboardService(store, log), log),
		Uploads:       h.NewUploadHandler(service.NewUploadService(images, log), cfg.MaxBodyBytes, log),
	}

	router := h.NewRouter(h.RouterConfig{
		Tokens:         tokens,
		Users:          store.Users,
		CookieName:     cfg.Auth.CookieName,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		HealthCheck: func(ctx context.Context) error {
			return repository.Ping(ctx, db)
		},
		Log: log,
	}, handlers)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("ArtVerse API starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Warn("event consumer did not stop in time")
	}

	log.Info("server exited")
	return nil
}

// newCartCache connects to Redis when it is configured and reachable, and
// otherwise serves carts without a cache.
func newCartCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.CartCache, func()) {
	if !cfg.RedisEnabled() {
		log.Info("redis not configured, cart cache disabled")
		return cache.NoopCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, cart cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return cache.NoopCache{}, func() {}
	}

	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return cache.NewRedisCache(client, cache.RedisOptions{}), func() {
		if err := client.Close(); err != nil {
			log.Warn("error closing redis client", zap.Error(err))
		}
	}
}
