package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/turfly/turf-booking/internal/config"
	"github.com/turfly/turf-booking/internal/database"
	"github.com/turfly/turf-booking/internal/handler"
	"github.com/turfly/turf-booking/internal/queue"
	"github.com/turfly/turf-booking/internal/repository"
	"github.com/turfly/turf-booking/internal/reservation"
	"github.com/turfly/turf-booking/internal/router"
	queue_publisher "github.com/turfly/turf-booking/internal/service"
)

func main() {
	// Best-effort .env load; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared pool.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	venueRepo := repository.NewVenueRepo(db)
	slotRepo := repository.NewSlotRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	// Idempotency store: Redis when reachable, otherwise a process-local
	// fallback.  The fallback only dedupes retries against this instance.
	var idem reservation.IdempotencyStore
	if rdb := config.NewRedisClient(); rdb != nil {
		idem = reservation.NewRedisIdempotencyStore(rdb)
		log.Println("idempotency store: redis")
	} else {
		idem = reservation.NewMemoryIdempotencyStore()
		log.Println("idempotency store: in-memory (redis unreachable)")
	}

	// The coordinator is the only writer of reserved flags and booking
	// rows; handlers and repositories never mutate them directly.
	coord := reservation.New(venueRepo, slotRepo, bookingRepo, idem, queue_publisher.Notifier{})

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicHandler := &handler.PublicHandler{VenueRepo: venueRepo, SlotRepo: slotRepo}
	ownerHandler := handler.NewOwnerHandler(venueRepo, slotRepo, bookingRepo)
	bookingHandler := handler.NewBookingHandler(coord, bookingRepo, userRepo)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler)
	router.RegisterUser(e, bookingHandler, cfg.JWTSecret)
	router.RegisterOwner(e, ownerHandler, bookingHandler, cfg.JWTSecret)

	// Notification consumer runs for the life of the process and keeps
	// reconnecting on broker failures.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
