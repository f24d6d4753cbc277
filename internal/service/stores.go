package service

import (
	"context"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

// UserStore is satisfied by *repository.UserRepo.  Misses are reported as
// repository.ErrUserNotFound.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is satisfied by *repository.TokenRepo.  Misses are reported as
// repository.ErrTokenNotFound.
type TokenStore interface {
	Create(ctx context.Context, t model.AccessToken) error
	GetByID(ctx context.Context, id string) (model.AccessToken, error)
	Revoke(ctx context.Context, id string) error
}

// ProductStore is satisfied by *repository.ProductRepo.  Misses are
// reported as repository.ErrProductNotFound.
type ProductStore interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	GetByProductID(ctx context.Context, productID string) (model.Product, error)
}
