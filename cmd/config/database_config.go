package config

import (
	migration "Marketplace-Cart/cmd/database/migrate"
	"Marketplace-Cart/internal/utils"
	"Marketplace-Cart/internal/utils/storage"
	"context"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Jakarta",
		utils.GetConfig("DB_HOST"),
		utils.GetConfig("DB_USER"),
		utils.GetConfig("DB_PASSWORD"),
		utils.GetConfig("DB_NAME"),
		utils.GetConfig("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Printf("Database connection failed: %v", err)
		return nil, err
	}
	return db, nil
}

// ConnectStorage opens the key-value backend named by STORAGE_DRIVER.
func ConnectStorage(ctx context.Context) (storage.KVStore, error) {
	driver := utils.GetConfig("STORAGE_DRIVER")
	switch driver {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "postgres":
		db, err := ConnectDB()
		if err != nil {
			return nil, err
		}
		if err := migration.Migrate(db); err != nil {
			return nil, err
		}
		return storage.NewGormStore(db), nil
	case "redis":
		store := storage.NewRedisStore(
			utils.GetConfig("REDIS_ADDR"),
			utils.GetConfig("REDIS_PASSWORD"),
			utils.GetRedisDB(),
		)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return store, nil
	case "sqlite":
		db, err := storage.OpenSQLite(utils.GetConfig("SQLITE_PATH"))
		if err != nil {
			return nil, err
		}
		store, err := storage.NewSQLiteStore(db)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := storage.NewS3Store(
			ctx,
			utils.GetConfig("AWS_S3_BUCKET"),
			utils.GetConfig("AWS_S3_REGION"),
			utils.GetConfig("AWS_S3_PREFIX"),
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}
