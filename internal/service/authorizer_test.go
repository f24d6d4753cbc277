package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/model"
)

func issue(t *testing.T, f *fixture) string {
	t.Helper()
	res, err := f.issuer.IssueToken(context.Background(), passwordRequest("user1", "pass1"))
	require.NoError(t, err)
	return res.AccessToken
}

func TestAuthorize_Success(t *testing.T) {
	f := newFixture(t)
	u := f.users.Add(t, "Test User", "user1", "pass1")

	p, err := f.authz.Authorize(context.Background(), issue(t, f))
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.User.ID)
	assert.Equal(t, u.ID, p.Token.UserID)
}

func TestAuthorize_Rejects(t *testing.T) {
	f := newFixture(t)
	f.users.Add(t, "Test User", "user1", "pass1")
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		_, err := f.authz.Authorize(ctx, "  ")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := f.authz.Authorize(ctx, "abc.def.ghi")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("unknown token id", func(t *testing.T) {
		now := time.Now()
		raw, err := f.codec.Encode(auth.TokenClaims{TokenID: "never-stored", UserID: 1, IssuedAt: now, ExpiresAt: now.Add(time.Hour)})
		require.NoError(t, err)
		_, err = f.authz.Authorize(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("revoked", func(t *testing.T) {
		raw := issue(t, f)
		claims, err := f.codec.Decode(raw)
		require.NoError(t, err)
		require.NoError(t, f.tokens.Revoke(ctx, claims.TokenID))
		_, err = f.authz.Authorize(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("expired row", func(t *testing.T) {
		raw := issue(t, f)
		claims, err := f.codec.Decode(raw)
		require.NoError(t, err)
		f.tokens.Expire(claims.TokenID)
		_, err = f.authz.Authorize(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("expired by clock", func(t *testing.T) {
		raw := issue(t, f)
		authz := NewAuthorizer(f.users, f.tokens, f.codec)
		authz.now = func() time.Time { return time.Now().Add(400 * 24 * time.Hour) }
		_, err := authz.Authorize(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
	t.Run("subject mismatch", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, f.tokens.Create(ctx, model.AccessToken{ID: "tok-other", UserID: 1, ExpiresAt: now.Add(time.Hour)}))
		raw, err := f.codec.Encode(auth.TokenClaims{TokenID: "tok-other", UserID: 99, IssuedAt: now, ExpiresAt: now.Add(time.Hour)})
		require.NoError(t, err)
		_, err = f.authz.Authorize(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAuthorize_StorageError(t *testing.T) {
	f := newFixture(t)
	f.users.Add(t, "Test User", "user1", "pass1")
	raw := issue(t, f)
	f.tokens.Err = errors.New("db down")

	_, err := f.authz.Authorize(context.Background(), raw)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
