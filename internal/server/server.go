package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "reelhub/docs" // swagger docs
	"reelhub/internal/bootstrap"
	"reelhub/internal/cache"
	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/featureflags"
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/notifications"
	"reelhub/internal/repository"
	"reelhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	defaultRateLimitMax   = 100
	defaultRateLimitWin   = 15 * time.Minute
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	tokens            *middleware.TokenManager
	notifier          *notifications.Notifier
	featureFlags      *featureflags.Manager
	userRepo          repository.UserRepository
	userService       *service.UserService
	videoService      *service.VideoService
	feedService       *service.FeedService
	engagementService *service.EngagementService
	commentService    *service.CommentService
}

// NewServer connects to the database and Redis and builds a Server on them.
// Redis is optional: when it is unreachable the server runs without cache,
// events and Redis rate limits.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	var userCache *cache.Cache
	if redisClient != nil {
		userCache = cache.New(redisClient)
	}

	userRepo := repository.NewUserRepository(db, userCache)
	videoRepo := repository.NewVideoRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	views := service.NewViewCounter(videoRepo, redisClient, flags, cfg.ViewDedupWindow)

	server := &Server{
		config:            cfg,
		db:                db,
		redis:             redisClient,
		promMiddleware:    middleware.InitMetrics("reelhub-api"),
		tokens:            tokens,
		featureFlags:      flags,
		userRepo:          userRepo,
		userService:       service.NewUserService(userRepo, followRepo, tokens),
		videoService:      service.NewVideoService(videoRepo, followRepo, commentRepo, views),
		feedService:       service.NewFeedService(videoRepo, userRepo),
		engagementService: service.NewEngagementService(videoRepo, commentRepo, reactionRepo),
		commentService:    service.NewCommentService(commentRepo, videoRepo),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span, before ContextMiddleware so the trace ID reaches the logger
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultAllowedOrigins
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Fixed-window limit per IP on the API
	maxRequests := s.config.RateLimitMax
	if maxRequests <= 0 {
		maxRequests = defaultRateLimitMax
	}
	window := s.config.RateLimitWindow
	if window <= 0 {
		window = defaultRateLimitWin
	}
	app.Use("/api", limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later."})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "ReelHub Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// User routes
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	// /profile must be registered before the generic /:id route
	users.Get("/profile", s.AuthRequired(), s.GetMyProfile)
	users.Put("/profile", s.AuthRequired(), s.UpdateMyProfile)
	users.Post("/:id/follow", s.AuthRequired(), s.FollowUser)
	users.Delete("/:id/follow", s.AuthRequired(), s.UnfollowUser)
	users.Get("/:id/videos", s.AuthOptional(), s.GetUserVideos)
	users.Get("/:id", s.AuthOptional(), s.GetUserProfile)

	// Video routes; named feeds before the generic /:id route
	videos := api.Group("/videos")
	videos.Get("/recommended", s.AuthOptional(), s.GetRecommendedVideos)
	videos.Get("/short", s.AuthOptional(), s.GetShortVideos)
	videos.Get("/long", s.AuthOptional(), s.GetLongVideos)
	videos.Get("/search", s.AuthOptional(), s.SearchVideos)
	videos.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "create_video"), s.CreateVideo)
	videos.Post("/:id/like", s.AuthRequired(), s.LikeVideo)
	videos.Post("/:id/dislike", s.AuthRequired(), s.DislikeVideo)
	videos.Get("/:id/comments", s.AuthOptional(), s.GetVideoComments)
	videos.Post("/:id/comments", s.AuthRequired(), middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	videos.Get("/:id", s.AuthOptional(), s.GetVideo)
	videos.Put("/:id", s.AuthRequired(), s.UpdateVideo)
	videos.Delete("/:id", s.AuthRequired(), s.DeleteVideo)

	// Comment routes
	comments := api.Group("/comments")
	comments.Get("/:id/replies", s.AuthOptional(), s.GetCommentReplies)
	comments.Post("/:id/like", s.AuthRequired(), s.LikeComment)
	comments.Put("/:id", s.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)

	// Admin routes
	admin := api.Group("/admin")
	admin.Get("/feature-flags", s.AuthRequired(), s.AdminRequired(), s.GetFeatureFlags)

	// Anything else
	app.Use(s.NotFound)
}

// NotFound answers every request no route matched.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusNotFound, &models.AppError{
		Code:    models.CodeNotFound,
		Message: "Not found - " + c.OriginalURL(),
	})
}

// HealthCheck is a simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. A server started without
// Redis is ready; a configured Redis that stops answering is not.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "ReelHub API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "ReelHub API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return models.RespondWithError(c, fiberErr.Code,
					&models.AppError{Code: httpErrorCode(fiberErr.Code), Message: fiberErr.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()), slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func httpErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusInternalServerError:
		return models.CodeInternal
	}
	if status >= 400 && status < 500 {
		return models.CodeValidation
	}
	return models.CodeInternal
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
