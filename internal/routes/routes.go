package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/travel-pay/travel_pay/internal/auth"
	"github.com/travel-pay/travel_pay/internal/config"
	"github.com/travel-pay/travel_pay/internal/identity"
	"github.com/travel-pay/travel_pay/internal/middleware"
	"github.com/travel-pay/travel_pay/internal/notification"
	"github.com/travel-pay/travel_pay/internal/session"
	"github.com/travel-pay/travel_pay/internal/trip"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Storage backends
// degrade gracefully: Postgres when DATABASE_URL is set, SQLite when
// SQLITE_PATH is set, in-memory otherwise. Outside development a database is
// mandatory.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app)

	// Storage backends
	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}

	var sessions session.Store
	switch {
	case d.DB != nil:
		sessions = session.NewPostgresStore(d.DB)
	case d.Cfg.SQLitePath != "":
		store, err := session.NewSQLiteStore(d.Cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite session store: %w", err)
		}
		sessions = store
	default:
		sessions = session.NewMemoryStore()
	}

	// Services and handlers
	identitySvc := identity.NewService(identityRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	tripSvc := trip.NewService(sessions, identityRepo, notifier, d.Logger)
	authSvc := auth.NewService(d.Cfg)

	identityHandler := identity.NewHandler(identitySvc)
	authHandler := auth.NewHandler(identitySvc, authSvc, tripSvc)
	tripHandler := trip.NewHandler(tripSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	api.Post("/users", identityHandler.Register)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg)
	protected := api.Group("", jwtmw)
	protected.Get("/me", identityHandler.Me)
	protected.Post("/auth/logout", authHandler.Logout)
	RegisterGroupRoutes(protected, tripHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
