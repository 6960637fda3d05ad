package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/config"     // Internal config loader
	"github.com/KaushikAtTrks/events-ticket/internal/database"   // MySQL connection setup
	"github.com/KaushikAtTrks/events-ticket/internal/handler"    // HTTP handlers
	"github.com/KaushikAtTrks/events-ticket/internal/middleware" // cache and rate limit middleware
	"github.com/KaushikAtTrks/events-ticket/internal/queue"      // message broker consumer
	"github.com/KaushikAtTrks/events-ticket/internal/repository" // data access layer
	"github.com/KaushikAtTrks/events-ticket/internal/router"     // route registration
	"github.com/KaushikAtTrks/events-ticket/internal/service"    // business logic
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env wins in production
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName) // Open MySQL pool
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // Redis for rate limiting and catalog cache; nil disables both
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	passRepo := repository.NewPassRepo(db)
	discountRepo := repository.NewDiscountRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	saleRepo := repository.NewStaffSaleRepo(db)

	// Services
	bookingSvc := service.NewBookingService(passRepo, discountRepo, bookingRepo, saleRepo)
	bookingSvc.Usage = discountRepo // discount usage accounting
	validator := service.NewEntryValidator(bookingRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	passHandler := handler.NewPassHandler(passRepo)
	discountHandler := handler.NewDiscountHandler(discountRepo)
	bookingHandler := handler.NewBookingHandler(bookingSvc, validator, bookingRepo)
	staffHandler := handler.NewStaffHandler(bookingSvc, saleRepo, discountRepo, userRepo)
	validationHandler := handler.NewValidationHandler(validator)
	adminHandler := handler.NewAdminHandler(saleRepo, userRepo)

	e := echo.New() // Create Echo instance

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)        // catalog response cache
	limiterMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb) // gate scan rate limiter

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, passHandler, cacheMW)
	router.RegisterBookings(e, bookingHandler, cfg.JWTSecret)
	router.RegisterStaff(e, staffHandler, cfg.JWTSecret)
	router.RegisterValidation(e, validationHandler, cfg.JWTSecret, limiterMW)
	router.RegisterAdmin(e, passHandler, discountHandler, adminHandler, cfg.JWTSecret)

	// Drain gate decision events into the audit log; reconnects on its own.
	go func() {
		if err := queue.StartEntryConsumer(); err != nil {
			log.Printf("entry consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
