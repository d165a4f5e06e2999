package config

import (
	"Marketplace-Cart/domain"
	"Marketplace-Cart/internal/api/handlers"
	"Marketplace-Cart/internal/api/routes"
	"Marketplace-Cart/internal/middleware"
	"Marketplace-Cart/internal/utils"
	"Marketplace-Cart/internal/utils/storage"
	"Marketplace-Cart/pkg/cart"
	"Marketplace-Cart/pkg/jwt"
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func NewApp(kv storage.KVStore) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		// a request may carry a full cart's worth of notes; the store enforces the real ceiling
		BodyLimit: 2 * domain.CartMaxSnapshotSize,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// Cart
	cartManager := cart.NewCartManager(
		kv,
		cart.WithNamespace(utils.GetConfig("CART_NAMESPACE")),
		cart.WithValidator(cart.NewLineItemValidator(validator)),
	)

	idleTTL, err := time.ParseDuration(utils.GetConfig("CART_IDLE_TTL"))
	if err != nil || idleTTL <= 0 {
		log.Warnw("invalid CART_IDLE_TTL, using 30m", "value", utils.GetConfig("CART_IDLE_TTL"))
		idleTTL = 30 * time.Minute
	}
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go cartManager.RunJanitor(janitorCtx, time.Minute, idleTTL)
	app.Hooks().OnShutdown(func() error {
		stopJanitor()
		return nil
	})

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	cartService := cart.NewCartService(cartManager)

	// Handler
	cartHandler := handlers.NewCartHandler(cartService, validator)

	// routes
	routesConfig := routes.Config{
		App:         app,
		CartHandler: cartHandler,
		Middleware:  middlewares,
		JWTService:  jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
