package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cinerec/cinerec/internal/artifacts"
	"github.com/cinerec/cinerec/internal/config"
	"github.com/cinerec/cinerec/internal/handlers"
	"github.com/cinerec/cinerec/internal/middleware"
	"github.com/cinerec/cinerec/internal/services"
	"github.com/cinerec/cinerec/internal/validation"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	snapshot *artifacts.Snapshot
	cache    *redis.Client
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// The artifact bundle is the one hard startup dependency: without a
	// consistent snapshot the process must not begin serving.
	snapshot, err := artifacts.Load(cfg.Artifacts.Dir, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact bundle: %w", err)
	}
	app.snapshot = snapshot

	app.cache = setupCache(cfg, app.logger)
	app.services = services.New(cfg, app.logger, snapshot, app.cache)
	app.handlers = handlers.New(app.logger, app.services)

	if err := app.setupRouter(); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing cache connection")
			return err
		}
	}
	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupCache connects the optional response cache. A missing URL or an
// unreachable Redis never blocks startup; the engine just serves uncached.
func setupCache(cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.Redis.URL == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, serving without response cache")
		_ = client.Close()
		return nil
	}

	logger.Info("Recommendation response cache enabled")
	return client
}

func (a *App) setupRouter() error {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	schemaValidator, err := validation.NewSchemaValidator()
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}
	validationMiddleware := middleware.NewValidationMiddleware(schemaValidator)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.Compression())

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/recommendations",
			validationMiddleware.ValidateRecommendationRequest(),
			a.handlers.Recommendation.Post)
		api.GET("/recommendations/users/:userId", a.handlers.Recommendation.GetForUser)

		api.POST("/movies/batch",
			validationMiddleware.ValidateMovieBatchRequest(),
			a.handlers.Movies.PostBatch)

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(a.services.Auth, a.logger))
		{
			admin.GET("/artifacts", a.handlers.Admin.GetArtifacts)
		}
	}

	a.router = router
	return nil
}
