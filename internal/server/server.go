package server

import (
	"fmt"
	"net/http"
	"time"

	"ffstore/internal/config"
	"ffstore/internal/database"
	custommiddleware "ffstore/internal/middleware"
	"ffstore/internal/repository"
	"ffstore/internal/service"
	"ffstore/internal/session"
	"ffstore/internal/storage"
	"ffstore/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) (*Server, error) {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, db.Health())
	})

	// Product images are served straight from the upload directory
	imageStore, err := storage.NewImageStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}
	router.Handle("/static/images/products/*", http.StripPrefix("/static/images/products/",
		http.FileServer(http.Dir(cfg.Upload.Dir))))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB())
	refreshTokenRepo := repository.NewRefreshTokenRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	categoryRepo := repository.NewCategoryRepository(db.DB())
	cartRepo := repository.NewCartRepository(db.DB())
	orderRepo := repository.NewOrderRepository(db.DB(), productRepo)
	settingsRepo := repository.NewSettingsRepository(db.DB())

	// Anonymous carts live in redis, keyed by the session cookie
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	cartStore := session.NewCartStore(redisClient, sessionTTL)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo, cartStore)
	checkoutService := service.NewCheckoutService(orderRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, settingsService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, cartService, orderService, logger)
	adminHandler := transport.NewAdminHandler(catalogService, orderService, userService, settingsService, imageStore, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuth := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)
	adminOnly := custommiddleware.RequireAdmin(logger)
	guestSession := custommiddleware.GuestSessionMiddleware(cfg.Session.CookieName, sessionTTL)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	catalogHandler.RegisterRoutes(router)
	adminHandler.RegisterRoutes(router, authMiddleware, adminOnly)

	// Cart and checkout serve guests and logged-in customers alike: the
	// session cookie identifies a guest, a bearer token wins when present
	router.Group(func(r chi.Router) {
		r.Use(guestSession)
		r.Use(optionalAuth)
		cartHandler.RegisterRoutes(r)
		checkoutHandler.RegisterRoutes(r, authMiddleware)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
