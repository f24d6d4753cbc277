package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

func TestTokenRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	tok := model.AccessToken{ID: "tok-1", UserID: 3, Name: "Personal Access Token", ExpiresAt: now.Add(time.Hour), CreatedAt: now}

	mock.ExpectExec(`INSERT INTO oauth_access_tokens \(id, user_id, name, revoked, expires_at, created_at\)`).
		WithArgs("tok-1", uint64(3), "Personal Access Token", false, tok.ExpiresAt, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewTokenRepo(db).Create(context.Background(), tok))
}

func TestTokenRepo_Create_Error(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO oauth_access_tokens`).WillReturnError(errors.New("disk full"))

	err := NewTokenRepo(db).Create(context.Background(), model.AccessToken{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert access token: disk full")
}

func TestTokenRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, user_id, name, revoked, expires_at, created_at FROM oauth_access_tokens WHERE id=\?`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "revoked", "expires_at", "created_at"}).
			AddRow("tok-1", 3, "Personal Access Token", true, now.Add(time.Hour), now))

	tok, err := NewTokenRepo(db).GetByID(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), tok.UserID)
	assert.True(t, tok.Revoked)
}

func TestTokenRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM oauth_access_tokens WHERE id=\?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "revoked", "expires_at", "created_at"}))

	_, err := NewTokenRepo(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRepo_Revoke_Idempotent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	q := `UPDATE oauth_access_tokens SET revoked=1 WHERE id=\? AND revoked=0`
	mock.ExpectExec(q).WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Revoke(context.Background(), "tok-1"))
	require.NoError(t, repo.Revoke(context.Background(), "tok-1"))
}
