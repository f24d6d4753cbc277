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
)

var userCols = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestUserRepo_GetByEmail_Found(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\? LIMIT 1`).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Test User", "user1", "$2a$hash", now, now))

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "Test User", u.Name)
	assert.Equal(t, "$2a$hash", u.PasswordHash)
}

func TestUserRepo_GetByEmail_ExactMatch(t *testing.T) {
	db, mock := newMock(t)

	// no trimming or lower-casing: the raw login identifier reaches the query
	mock.ExpectQuery(`FROM users WHERE email=\?`).
		WithArgs(" User1 ").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := NewUserRepo(db).GetByEmail(context.Background(), " User1 ")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_GetByID_DBError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE id=\?`).
		WithArgs(uint64(7)).
		WillReturnError(errors.New("db down"))

	_, err := NewUserRepo(db).GetByID(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO users \(name, email, password_hash\)`).
		WithArgs("Admin User", "admin@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := NewUserRepo(db).Create(context.Background(), "Admin User", "admin@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := NewUserRepo(db).Create(context.Background(), "x", "user1", "hash")
	assert.ErrorIs(t, err, ErrEmailExists)
}
