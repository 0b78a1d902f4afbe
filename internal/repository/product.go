package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/base-14/examples/go/echo-product-catalog/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// ListOrder controls the ordering of ListAll.
type ListOrder string

const (
	OrderIDDesc ListOrder = "id_desc"
	OrderIDAsc  ListOrder = "id_asc"
	OrderNone   ListOrder = "none"
)

type ProductRepository struct {
	db    *gorm.DB
	order ListOrder
}

func NewProductRepository(db *gorm.DB, order ListOrder) *ProductRepository {
	if order == "" {
		order = OrderIDDesc
	}
	return &ProductRepository{db: db, order: order}
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	query := r.db.WithContext(ctx)
	switch r.order {
	case OrderIDDesc:
		query = query.Order("id DESC")
	case OrderIDAsc:
		query = query.Order("id ASC")
	}

	products := make([]models.Product, 0)
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save writes every column of a previously loaded product, including zero values.
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// Destroy permanently removes the row; products have no soft-delete column.
func (r *ProductRepository) Destroy(ctx context.Context, product *models.Product) error {
	result := r.db.WithContext(ctx).Delete(product)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
