package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/model"
	"github.com/iliyamo/insurance-catalog/internal/repository"
)

// Principal is the caller behind a valid bearer token.
type Principal struct {
	User  model.User
	Token model.AccessToken
}

// Authorizer resolves bearer tokens to principals.
type Authorizer struct {
	users  UserStore
	tokens TokenStore
	codec  auth.TokenCodec
	now    func() time.Time
}

func NewAuthorizer(users UserStore, tokens TokenStore, codec auth.TokenCodec) *Authorizer {
	return &Authorizer{users: users, tokens: tokens, codec: codec, now: time.Now}
}

// Authorize accepts only a well-signed token whose row exists, belongs to
// the subject in the token, is not revoked and has not expired.  Expiry is
// checked against the stored row on every call.
func (a *Authorizer) Authorize(ctx context.Context, raw string) (*Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := a.codec.Decode(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	tok, err := a.tokens.GetByID(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageErr("load token", err)
	}
	if tok.UserID != claims.UserID || !tok.Live(a.now()) {
		return nil, ErrUnauthenticated
	}

	u, err := a.users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageErr("load user", err)
	}
	return &Principal{User: u, Token: tok}, nil
}
