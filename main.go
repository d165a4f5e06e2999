package main

import (
	"Marketplace-Cart/cmd/config"
	"Marketplace-Cart/internal/utils"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	utils.LoadConfig()

	kv, err := config.ConnectStorage(context.Background())
	if err != nil {
		log.Fatalf("failed to open cart storage: %v", err)
	}

	app, err := config.NewApp(kv)
	if err != nil {
		log.Fatalf("failed to create app: %v", err)
	}

	log.Infow("cart service starting", "driver", utils.GetConfig("STORAGE_DRIVER"), "port", utils.GetConfig("APP_PORT"))
	if err := app.Listen(fmt.Sprintf(":%s", utils.GetConfig("APP_PORT"))); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
