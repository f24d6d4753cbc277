package client

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

// AllTypes is the filter value that selects every product.
const AllTypes = "ALL"

const fetchFailedMessage = "Failed to fetch products"

// ProductLister is satisfied by *API.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// Catalog holds the fetched products and the selected type filter.
// Filtering and type enumeration never go back to the server.
type Catalog struct {
	api ProductLister

	mu           sync.RWMutex
	products     []model.Product
	loading      bool
	err          string
	selectedType string
}

func NewCatalog(api ProductLister) *Catalog {
	return &Catalog{api: api, products: []model.Product{}, selectedType: AllTypes}
}

// Fetch replaces the product list.  On failure the list is emptied and
// Error is set; the error is also returned.
func (c *Catalog) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.loading, c.err = true, ""
	c.mu.Unlock()

	ps, err := c.api.ListProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.products = []model.Product{}
		c.err = fetchErrorMessage(err)
		return err
	}
	if ps == nil {
		ps = []model.Product{}
	}
	c.products = ps
	return nil
}

func fetchErrorMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fetchFailedMessage
}

// Products returns the full list in server order.
func (c *Catalog) Products() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Product(nil), c.products...)
}

// Filtered returns the products of the selected type, or all of them when
// the selection is AllTypes.
func (c *Catalog) Filtered() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if c.selectedType == AllTypes || p.Type == c.selectedType {
			out = append(out, p)
		}
	}
	return out
}

// Types returns AllTypes followed by each distinct product type in the
// order it first appears.
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{AllTypes}
	for _, p := range c.products {
		if !seen[p.Type] {
			seen[p.Type] = true
			out = append(out, p.Type)
		}
	}
	return out
}

// ByID finds a held product by external id.
func (c *Catalog) ByID(productID string) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return model.Product{}, false
}

func (c *Catalog) SetSelectedType(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedType = t
}

func (c *Catalog) SelectedType() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedType
}

func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Catalog) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Catalog) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
}
