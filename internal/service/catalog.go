package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/insurance-catalog/internal/model"
	"github.com/iliyamo/insurance-catalog/internal/repository"
)

// Catalog is the read-only product service.
type Catalog struct {
	products ProductStore
}

func NewCatalog(products ProductStore) *Catalog {
	return &Catalog{products: products}
}

// ListProducts returns the whole catalog; an empty catalog is not an error.
func (c *Catalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	ps, err := c.products.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	if ps == nil {
		ps = []model.Product{}
	}
	return ps, nil
}

// GetProduct looks up a product by its external identifier.
func (c *Catalog) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	p, err := c.products.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: product %q", ErrNotFound, productID)
		}
		return nil, storageErr("get product", err)
	}
	return &p, nil
}
