package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

var productCols = []string{"id", "product_id", "name", "type", "coverage", "price", "description", "is_active", "created_at", "updated_at"}

func TestProductRepo_ListAll(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM products ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "prod_001", "Premium Health Plan", "HEALTH", "Full medical + dental", "200.00", "Comprehensive", true, now, now).
			AddRow(2, "prod_009", "Travel Insurance", "TRAVEL", "Trip cancellation", "35.00", nil, true, now, now))

	got, err := NewProductRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "prod_001", got[0].ProductID)
	assert.Equal(t, 200.0, got[0].Price)
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "Comprehensive", *got[0].Description)
	assert.Nil(t, got[1].Description)
}

func TestProductRepo_ListAll_Empty(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM products ORDER BY id`).WillReturnRows(sqlmock.NewRows(productCols))

	got, err := NewProductRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProductRepo_ListAll_Error(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM products`).WillReturnError(errors.New("connection refused"))

	_, err := NewProductRepo(db).ListAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}

func TestProductRepo_GetByProductID(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM products WHERE product_id=\? LIMIT 1`).
		WithArgs("prod_001").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "prod_001", "Premium Health Plan", "HEALTH", "Full medical + dental", 200.0, nil, true, now, now))

	p, err := NewProductRepo(db).GetByProductID(context.Background(), "prod_001")
	require.NoError(t, err)
	assert.Equal(t, "Premium Health Plan", p.Name)
	assert.Equal(t, "HEALTH", p.Type)
}

func TestProductRepo_GetByProductID_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM products WHERE product_id=\?`).
		WithArgs("does_not_exist").
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := NewProductRepo(db).GetByProductID(context.Background(), "does_not_exist")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepo_Insert_Duplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO products`).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := NewProductRepo(db).Insert(context.Background(), model.Product{ProductID: "prod_001"})
	assert.ErrorIs(t, err, ErrProductExists)
}
