package services

import (
	"context"
	"errors"

	"github.com/base-14/examples/go/echo-product-catalog/internal/jobs/tasks"
	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/metrics"
	"github.com/base-14/examples/go/echo-product-catalog/internal/models"
	"github.com/base-14/examples/go/echo-product-catalog/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var ErrProductNotFound = errors.New("product not found")

var (
	tracer = otel.Tracer("echo-product-catalog")
	meter  = otel.Meter("echo-product-catalog")

	productOperationsCounter metric.Int64Counter
)

// EventPublisher receives product changes after they are stored.
type EventPublisher interface {
	EnqueueProductEvent(ctx context.Context, action string, product *models.Product) error
}

type ProductService struct {
	repo      *repository.ProductRepository
	publisher EventPublisher
}

// NewProductService builds the service. publisher may be nil, in which case
// no product events are emitted.
func NewProductService(repo *repository.ProductRepository, publisher EventPublisher) *ProductService {
	var err error
	productOperationsCounter, err = meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create product operations counter")
	}

	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	ctx, span := tracer.Start(ctx, "product.list")
	defer span.End()

	products, err := s.repo.ListAll(ctx)
	if err != nil {
		s.fail(ctx, span, "list", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))
	metrics.SetProductsListed(len(products))
	s.succeed(ctx, "list")

	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "product.get")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.find(ctx, span, "get", id)
	if err != nil {
		return nil, err
	}

	s.succeed(ctx, "get")
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, input models.CreateProductRequest) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "product.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", input.Name),
		attribute.Float64("product.price", input.Price),
	)

	product := models.Product{
		Name:         input.Name,
		Price:        input.Price,
		Availability: true,
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		s.fail(ctx, span, "create", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product.id", int64(product.ID)))

	logging.Info(ctx).
		Uint("product_id", product.ID).
		Str("name", product.Name).
		Float64("price", product.Price).
		Msg("product created")

	s.succeed(ctx, "create")
	s.publish(ctx, tasks.ActionCreated, &product)

	return &product, nil
}

// Update replaces name, price and availability of an existing product.
func (s *ProductService) Update(ctx context.Context, id int64, input models.UpdateProductRequest) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "product.update")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.find(ctx, span, "update", id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Availability = input.Availability

	if err := s.repo.Save(ctx, product); err != nil {
		s.fail(ctx, span, "update", err)
		return nil, err
	}

	logging.Info(ctx).
		Uint("product_id", product.ID).
		Msg("product updated")

	s.succeed(ctx, "update")
	s.publish(ctx, tasks.ActionUpdated, product)

	return product, nil
}

func (s *ProductService) ToggleAvailability(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := tracer.Start(ctx, "product.toggle_availability")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.find(ctx, span, "toggle_availability", id)
	if err != nil {
		return nil, err
	}

	product.Availability = !product.Availability

	if err := s.repo.Save(ctx, product); err != nil {
		s.fail(ctx, span, "toggle_availability", err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("product.availability", product.Availability))

	logging.Info(ctx).
		Uint("product_id", product.ID).
		Bool("availability", product.Availability).
		Msg("product availability toggled")

	s.succeed(ctx, "toggle_availability")
	s.publish(ctx, tasks.ActionAvailabilityToggled, product)

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "product.delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := s.find(ctx, span, "delete", id)
	if err != nil {
		return err
	}

	if err := s.repo.Destroy(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordOperation("delete", metrics.OutcomeNotFound)
			return ErrProductNotFound
		}
		s.fail(ctx, span, "delete", err)
		return err
	}

	logging.Info(ctx).
		Uint("product_id", product.ID).
		Msg("product deleted")

	s.succeed(ctx, "delete")
	s.publish(ctx, tasks.ActionDeleted, product)

	return nil
}

func (s *ProductService) find(ctx context.Context, span trace.Span, operation string, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetAttributes(attribute.Bool("product.found", false))
			metrics.RecordOperation(operation, metrics.OutcomeNotFound)
			return nil, ErrProductNotFound
		}
		s.fail(ctx, span, operation, err)
		return nil, err
	}
	return product, nil
}

func (s *ProductService) publish(ctx context.Context, action string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.EnqueueProductEvent(ctx, action, product); err != nil {
		logging.Warn(ctx).
			Err(err).
			Str("action", action).
			Uint("product_id", product.ID).
			Msg("failed to enqueue product event")
	}
}

func (s *ProductService) succeed(ctx context.Context, operation string) {
	metrics.RecordOperation(operation, metrics.OutcomeSuccess)
	if productOperationsCounter != nil {
		productOperationsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
}

func (s *ProductService) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.RecordOperation(operation, metrics.OutcomeError)

	logging.Error(ctx).
		Err(err).
		Str("operation", operation).
		Msg("product operation failed")
}
