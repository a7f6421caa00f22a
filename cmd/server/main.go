package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/skybook/skybook-api/internal/config"
	"github.com/skybook/skybook-api/internal/database"
	"github.com/skybook/skybook-api/internal/handler"
	"github.com/skybook/skybook-api/internal/middleware"
	"github.com/skybook/skybook-api/internal/queue"
	"github.com/skybook/skybook-api/internal/repository"
	"github.com/skybook/skybook-api/internal/router"
	"github.com/skybook/skybook-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; without it the rate limiter and response
	// cache become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	bookings := repository.NewBookingRepo(db)

	engine := service.NewBookingService(hotels, bookings, queue.NewNotifier())

	authH := handler.NewAuthHandler(cfg, users, tokens)
	hotelH := handler.NewHotelHandler(hotels)
	bookingH := handler.NewBookingHandler(engine)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterHotels(e, hotelH, cfg.JWTSecret, cache)
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)

	// Background consumer writes booking events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
