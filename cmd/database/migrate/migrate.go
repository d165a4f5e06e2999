package migration

import (
	"Marketplace-Cart/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.KVEntry{}); err != nil {
		log.Printf("Error migrating kv entry database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
