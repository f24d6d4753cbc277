package model

import "time"

// Product is an insurance product in the catalog.  ProductID is the
// human-assigned external identifier and the only lookup key offered to
// clients; ID is the internal surrogate key.  Type is free text even though
// the catalog only uses HEALTH, LIFE, AUTO, HOME, TRAVEL and PET.
type Product struct {
	ID          uint64    `json:"id"`
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Coverage    string    `json:"coverage"`
	Price       float64   `json:"price"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
