package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/base-14/examples/go/echo-product-catalog/internal/jobs/tasks"
	"github.com/base-14/examples/go/echo-product-catalog/internal/models"
	"github.com/base-14/examples/go/echo-product-catalog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type publishedEvent struct {
	action    string
	productID uint
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) EnqueueProductEvent(_ context.Context, action string, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{action: action, productID: product.ID})
	return f.err
}

func setupService(t *testing.T, publisher EventPublisher) (*ProductService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}))

	repo := repository.NewProductRepository(db, repository.OrderIDDesc)
	return NewProductService(repo, publisher), db
}

func TestProductService_Create(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := setupService(t, publisher)
	ctx := context.Background()

	product, err := svc.Create(ctx, models.CreateProductRequest{Name: "Test Product", Price: 0.99})
	require.NoError(t, err)

	assert.NotZero(t, product.ID)
	assert.Equal(t, "Test Product", product.Name)
	assert.True(t, product.Availability)
	assert.Equal(t, []publishedEvent{{action: tasks.ActionCreated, productID: product.ID}}, publisher.events)
}

func TestProductService_GetNotFound(t *testing.T) {
	svc, _ := setupService(t, nil)

	_, err := svc.Get(context.Background(), 4000)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_List(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	products, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	first, err := svc.Create(ctx, models.CreateProductRequest{Name: "Monitor", Price: 300})
	require.NoError(t, err)
	second, err := svc.Create(ctx, models.CreateProductRequest{Name: "Mouse", Price: 20})
	require.NoError(t, err)

	products, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, second.ID, products[0].ID)
	assert.Equal(t, first.ID, products[1].ID)
}

func TestProductService_Update(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := setupService(t, publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateProductRequest{Name: "Monitor", Price: 300})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, int64(created.ID), models.UpdateProductRequest{
		Name:         "Curved Monitor",
		Price:        450,
		Availability: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Curved Monitor", updated.Name)
	assert.InDelta(t, 450, updated.Price, 0.0001)
	assert.False(t, updated.Availability)

	fetched, err := svc.Get(ctx, int64(created.ID))
	require.NoError(t, err)
	assert.Equal(t, "Curved Monitor", fetched.Name)
	assert.False(t, fetched.Availability)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, tasks.ActionUpdated, publisher.events[1].action)
}

func TestProductService_UpdateNotFound(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := setupService(t, publisher)

	_, err := svc.Update(context.Background(), 99, models.UpdateProductRequest{Name: "x", Price: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, publisher.events)
}

func TestProductService_ToggleAvailabilityTwiceRestores(t *testing.T) {
	svc, _ := setupService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateProductRequest{Name: "Keyboard", Price: 80})
	require.NoError(t, err)
	require.True(t, created.Availability)

	toggled, err := svc.ToggleAvailability(ctx, int64(created.ID))
	require.NoError(t, err)
	assert.False(t, toggled.Availability)

	toggled, err = svc.ToggleAvailability(ctx, int64(created.ID))
	require.NoError(t, err)
	assert.True(t, toggled.Availability)
}

func TestProductService_Delete(t *testing.T) {
	publisher := &fakePublisher{}
	svc, db := setupService(t, publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateProductRequest{Name: "Webcam", Price: 60})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, int64(created.ID)))

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Get(ctx, int64(created.ID))
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, int64(created.ID)), ErrProductNotFound)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, tasks.ActionDeleted, publisher.events[1].action)
}

func TestProductService_PublishFailureDoesNotFailOperation(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("redis unavailable")}
	svc, _ := setupService(t, publisher)

	product, err := svc.Create(context.Background(), models.CreateProductRequest{Name: "Tablet", Price: 250})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Len(t, publisher.events, 1)
}

func TestProductService_StorageFault(t *testing.T) {
	svc, db := setupService(t, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.List(context.Background())
	require.Error(t, err)

	_, err = svc.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductNotFound)
}
