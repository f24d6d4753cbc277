package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/testutil"
)

type fixture struct {
	users  *testutil.Users
	tokens *testutil.Tokens
	events *testutil.Events
	codec  *auth.JWTCodec
	issuer *TokenIssuer
	authz  *Authorizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  &testutil.Users{},
		tokens: &testutil.Tokens{},
		events: &testutil.Events{},
		codec:  auth.NewJWTCodec("test-secret", "insurance-catalog"),
	}
	clients := auth.ClientRegistry{"test_client": "test_secret"}
	f.issuer = NewTokenIssuer(f.users, f.tokens, clients, f.codec, f.events, logging.Discard(),
		IssuerConfig{TokenTTL: 365 * 24 * time.Hour, BcryptCost: bcrypt.MinCost})
	f.authz = NewAuthorizer(f.users, f.tokens, f.codec)
	return f
}

func passwordRequest(username, password string) TokenRequest {
	return TokenRequest{
		GrantType:    GrantPassword,
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Username:     username,
		Password:     password,
	}
}
