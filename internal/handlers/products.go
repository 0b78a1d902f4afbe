package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/base-14/examples/go/echo-product-catalog/internal/models"
	"github.com/base-14/examples/go/echo-product-catalog/internal/services"
	"github.com/base-14/examples/go/echo-product-catalog/internal/validation"

	"github.com/labstack/echo/v4"
)

const productDeletedMessage = "Product delete"

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.List(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list products").SetInternal(err)
	}

	return c.JSON(http.StatusOK, models.ProductsEnvelope{Data: products})
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.productService.Get(ctx, id)
	if err != nil {
		return productError(err, "failed to get product")
	}

	return c.JSON(http.StatusOK, models.ProductEnvelope{Data: product})
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	in := validation.FromContext(c)

	input := models.CreateProductRequest{
		Name:  in.String("name"),
		Price: in.Float("price"),
	}

	product, err := h.productService.Create(ctx, input)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create product").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, models.ProductEnvelope{Data: product})
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	in := validation.FromContext(c)

	id, err := productID(c)
	if err != nil {
		return err
	}

	input := models.UpdateProductRequest{
		Name:         in.String("name"),
		Price:        in.Float("price"),
		Availability: in.Bool("availability"),
	}

	product, err := h.productService.Update(ctx, id, input)
	if err != nil {
		return productError(err, "failed to update product")
	}

	return c.JSON(http.StatusOK, models.ProductEnvelope{Data: product})
}

func (h *ProductHandler) ToggleAvailability(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.productService.ToggleAvailability(ctx, id)
	if err != nil {
		return productError(err, "failed to update product availability")
	}

	return c.JSON(http.StatusOK, models.ProductEnvelope{Data: product})
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.productService.Delete(ctx, id); err != nil {
		return productError(err, "failed to delete product")
	}

	return c.JSON(http.StatusOK, models.MessageEnvelope{Data: productDeletedMessage})
}

// productID reads the id validated by the route's gate.
func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func productError(err error, message string) error {
	if errors.Is(err, services.ErrProductNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, message).SetInternal(err)
}
