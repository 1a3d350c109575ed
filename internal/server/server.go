package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feniks1632/foodgram-project-react/config"
	"github.com/feniks1632/foodgram-project-react/internal/api"
	"github.com/feniks1632/foodgram-project-react/internal/database"
	"github.com/feniks1632/foodgram-project-react/internal/middleware"
	"github.com/feniks1632/foodgram-project-react/internal/router"
	"github.com/feniks1632/foodgram-project-react/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New wires the database, services and handlers into a ready-to-start server
func New(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		return nil, err
	}

	// Rate limiting is optional; without redis the limiter is a no-op
	var limiter *middleware.RateLimiter
	if cfg.RedisURL != "" || cfg.RedisHost != "" {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		limiter = middleware.NewRecipePublishRateLimiter(redisClient)
	} else {
		log.Printf("Redis not configured, rate limiting disabled")
	}

	storage, err := newImageStorage(cfg)
	if err != nil {
		return nil, err
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	userService := service.NewUserService(db)
	subscriptionService := service.NewSubscriptionService(db)
	recipeService := service.NewRecipeService(db)
	shoppingListService := service.NewShoppingListService(db)
	imageService := service.NewImageService(storage)
	catalogService := service.NewCatalogService(db)

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService, subscriptionService, authService)
	recipeHandler := api.NewRecipeHandler(
		recipeService, shoppingListService, subscriptionService,
		userService, imageService, authService, limiter,
	)
	catalogHandler := api.NewCatalogHandler(catalogService)

	mediaDir := ""
	if cfg.MediaBackend == "local" {
		mediaDir = cfg.MediaDir
	}

	engine := router.SetupRouter(authHandler, userHandler, recipeHandler, catalogHandler, mediaDir)

	return &Server{
		router: engine,
		db:     db,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}, nil
}

func newImageStorage(cfg *config.Config) (service.ImageStorage, error) {
	if cfg.MediaBackend == "s3" {
		s3Config, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		return service.NewS3Storage(s3Config), nil
	}
	return service.NewLocalStorage(cfg.MediaDir, cfg.MediaBaseURL), nil
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
