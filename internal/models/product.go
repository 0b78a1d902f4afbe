package models

import (
	"time"
)

// Product is the only catalog entity. Availability defaults to true on insert.
type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Price        float64   `gorm:"not null" json:"price"`
	Availability bool      `gorm:"not null;default:true" json:"availability"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

type CreateProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type UpdateProductRequest struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Availability bool    `json:"availability"`
}

type ProductEnvelope struct {
	Data *Product `json:"data"`
}

type ProductsEnvelope struct {
	Data []Product `json:"data"`
}

type MessageEnvelope struct {
	Data string `json:"data"`
}
