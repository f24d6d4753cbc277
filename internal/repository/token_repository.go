package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

// TokenRepo persists access token rows.  Expiry and revocation are evaluated
// by callers at read time; nothing sweeps the table.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a new token row.
func (r *TokenRepo) Create(ctx context.Context, t model.AccessToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO oauth_access_tokens (id, user_id, name, revoked, expires_at, created_at) VALUES (?,?,?,?,?,?)",
		t.ID, t.UserID, t.Name, t.Revoked, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}
	return nil
}

// GetByID returns the token row regardless of its state.
func (r *TokenRepo) GetByID(ctx context.Context, id string) (model.AccessToken, error) {
	var t model.AccessToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, name, revoked, expires_at, created_at FROM oauth_access_tokens WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.UserID, &t.Name, &t.Revoked, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessToken{}, ErrTokenNotFound
		}
		return model.AccessToken{}, fmt.Errorf("query access token: %w", err)
	}
	return t, nil
}

// Revoke marks a token as revoked.  Revoking a revoked or unknown token
// is a no-op.
func (r *TokenRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE oauth_access_tokens SET revoked=1 WHERE id=? AND revoked=0", id)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}
