package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

const productColumns = "id, product_id, name, type, coverage, price, description, is_active, created_at, updated_at"

// ProductRepo reads the `products` table.  The HTTP surface never writes
// products; Insert exists for the seeder.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// ListAll returns every product ordered by id.  An empty table yields an
// empty, non-nil slice.
func (r *ProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// GetByProductID looks a product up by its external identifier.
func (r *ProductRepo) GetByProductID(ctx context.Context, productID string) (model.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE product_id=? LIMIT 1", productID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

// Insert adds a product.  A duplicate product_id yields ErrProductExists.
func (r *ProductRepo) Insert(ctx context.Context, p model.Product) error {
	var desc sql.NullString
	if p.Description != nil {
		desc = sql.NullString{String: *p.Description, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products (product_id, name, type, coverage, price, description, is_active) VALUES (?,?,?,?,?,?,?)",
		p.ProductID, p.Name, p.Type, p.Coverage, p.Price, desc, p.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return ErrProductExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (model.Product, error) {
	var (
		p    model.Product
		desc sql.NullString
	)
	if err := s.Scan(&p.ID, &p.ProductID, &p.Name, &p.Type, &p.Coverage, &p.Price,
		&desc, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Product{}, err
	}
	if desc.Valid {
		d := desc.String
		p.Description = &d
	}
	return p, nil
}
