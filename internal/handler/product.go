package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/service"
)

// ProductHandler serves the read-only catalog.  Both routes sit behind
// BearerAuth.
type ProductHandler struct {
	Catalog *service.Catalog
	Log     logging.Logger
}

func NewProductHandler(catalog *service.Catalog, log logging.Logger) *ProductHandler {
	return &ProductHandler{Catalog: catalog, Log: log}
}

// List: GET /products.  An empty catalog yields "data": [].
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, catalogBody{
		Success: true,
		Data:    products,
		Message: "Products retrieved successfully",
	})
}

// Get: GET /products/:id where id is the external product_id.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, catalogBody{
		Success: true,
		Data:    p,
		Message: "Product retrieved successfully",
	})
}
