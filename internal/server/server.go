package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    zerolog.Logger
}

// Deps are the external resources the server is built from. Redis and the
// image store are optional.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Images service.ImageStore
}

// NewServer wires services, middleware and routes
func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.ErrorHandler(),
	)

	images := deps.Images
	if images == nil {
		images = service.NewLocalImageStore(cfg.MediaDir, cfg.MediaURL)
	}
	if _, local := images.(*service.LocalImageStore); local && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaDir)
	}

	var denyList service.TokenDenyList = service.NoopDenyList{}
	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		denyList = service.NewRedisDenyList(deps.Redis)
		limiter = middleware.NewRecipeCreationRateLimiter(
			middleware.NewRedisCounter(deps.Redis), cfg.RecipeCreateLimit, cfg.RecipeCreateWindow)
	}

	catalog := service.NewCatalogService(deps.DB)
	users := service.NewUserService(deps.DB)
	recipes := service.NewRecipeService(deps.DB, catalog, images)
	api.SetupAPI(router, api.Services{
		Auth:          service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.JWTTTL, denyList),
		Users:         users,
		Subscriptions: service.NewSubscriptionService(deps.DB, users, recipes),
		Catalog:       catalog,
		Recipes:       recipes,
		Relations:     service.NewRelationService(deps.DB),
		RecipeLimiter: limiter,
	})

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), deps.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{
		router: router,
		log:    logger.WithComponent("server"),
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("starting HTTP server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(ctx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
