package routes

import (
	"Marketplace-Cart/internal/api/handlers"
	"Marketplace-Cart/internal/middleware"
	"Marketplace-Cart/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App         *fiber.App
	CartHandler handlers.CartHandler
	Middleware  middleware.Middleware
	JWTService  jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Cart()
	c.GuestRoute()
	c.AuthRoute()
}

func (c *Config) Cart() {
	cart := c.App.Group("/api/v1/cart", c.Middleware.OptionalAuthMiddleware(c.JWTService))
	{
		cart.Get("/", c.CartHandler.GetCart)
		cart.Get("/optimized", c.CartHandler.GetOptimizedItems)
		cart.Get("/count", c.CartHandler.CountItems)
		cart.Post("/items", c.CartHandler.AddItem)
		cart.Delete("/items/:id", c.CartHandler.RemoveItem)
		cart.Delete("/", c.CartHandler.ClearCart)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works. test"})
	})
}

func (c *Config) AuthRoute() {
	c.App.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		role := c.Locals("role")
		return c.JSON(fiber.Map{
			"message": "Welcome to your cart",
			"user_id": userID,
			"role":    role,
		})
	})
}
