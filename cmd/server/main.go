package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"

	"authgate/internal/auth"
	"authgate/internal/config"
	"authgate/internal/database"
	"authgate/internal/handlers"
	"authgate/internal/middleware"
	"authgate/internal/platform/session"
	puser "authgate/internal/platform/user"
)

func tooManyRequests(message string) func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": message})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var store puser.Store
	if cfg.DatabaseURL == "memory" {
		// Volatile store for local development without Postgres.
		store = database.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		store = database.NewStore(db)
	}

	users := puser.NewService(store)
	users.SetLockout(cfg.LockoutMaxAttempts, cfg.LockoutDuration)
	tokens := auth.NewTokenService(cfg)
	sessions := session.NewService(users, tokens)

	app := fiber.New()

	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("users", users)
		c.Locals("tokens", tokens)
		c.Locals("sessions", sessions)
		return c.Next()
	})

	// Unauthenticated and unthrottled.
	app.Get("/health", handlers.HealthCheck)

	app.Use(limiter.New(limiter.Config{
		Max:          100,
		Expiration:   15 * time.Minute,
		LimitReached: tooManyRequests("Too many requests from this IP, please try again later."),
	}))

	authLimiter := limiter.New(limiter.Config{
		Max:                    5,
		Expiration:             15 * time.Minute,
		SkipSuccessfulRequests: true,
		LimitReached:           tooManyRequests("Too many authentication attempts, please try again later."),
	})
	resetLimiter := limiter.New(limiter.Config{
		Max:          3,
		Expiration:   time.Hour,
		LimitReached: tooManyRequests("Too many password reset attempts, please try again later."),
	})

	app.Post("/signup", authLimiter, handlers.Signup)
	app.Post("/login", authLimiter, handlers.Login)
	app.Post("/refresh", handlers.Refresh)
	app.Post("/logout", handlers.Logout)
	app.Post("/forgot-password", resetLimiter, handlers.ForgotPassword)

	profile := app.Group("/profile", middleware.AuthMiddleware)
	profile.Get("/", handlers.GetProfile)
	profile.Put("/", handlers.UpdateProfile)

	admin := app.Group("/admin", middleware.AuthMiddleware, middleware.RequireRole(database.RoleAdmin))
	admin.Get("/users", handlers.GetAllUsers)
	admin.Get("/users/:id", handlers.GetUser)
	admin.Delete("/users/:id", handlers.DeleteUser)
	admin.Put("/users/:id/role", handlers.UpdateUserRole)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	log.Fatal().Err(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort))).Msg("server stopped")
}
