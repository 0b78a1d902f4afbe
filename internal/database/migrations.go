package database

import (
	"context"

	"github.com/base-14/examples/go/echo-product-catalog/internal/models"

	"gorm.io/gorm"
)

func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&models.Product{},
	)
}

// Seed inserts the sample catalog only into an empty products table.
func Seed(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "49-inch curved monitor", Price: 300, Availability: true},
		{Name: "Mechanical keyboard", Price: 89.9, Availability: true},
		{Name: "Wireless mouse", Price: 24.5, Availability: true},
		{Name: "USB-C docking station", Price: 149, Availability: true},
	}

	return db.WithContext(ctx).Create(&products).Error
}
