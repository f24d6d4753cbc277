package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/model"
	"github.com/iliyamo/insurance-catalog/internal/queue"
	"github.com/iliyamo/insurance-catalog/internal/repository"
)

const (
	GrantPassword = "password"
	TokenType     = "Bearer"

	personalTokenName = "Personal Access Token"
)

// TokenRequest is the body of POST /oauth/token.  Username and Password are
// only required for the password grant.
type TokenRequest struct {
	GrantType    string `json:"grant_type" form:"grant_type"`
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
	Username     string `json:"username" form:"username"`
	Password     string `json:"password" form:"password"`
}

// tokenFields lists the request fields in the order they are validated.
var tokenFields = []struct{ name, label string }{
	{"grant_type", "grant type"},
	{"client_id", "client id"},
	{"client_secret", "client secret"},
	{"username", "username"},
	{"password", "password"},
}

func (r TokenRequest) field(name string) string {
	switch name {
	case "grant_type":
		return r.GrantType
	case "client_id":
		return r.ClientID
	case "client_secret":
		return r.ClientSecret
	case "username":
		return r.Username
	case "password":
		return r.Password
	}
	return ""
}

// Normalize trims surrounding whitespace from every field but the password.
func (r TokenRequest) Normalize() TokenRequest {
	r.GrantType = strings.TrimSpace(r.GrantType)
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.ClientSecret = strings.TrimSpace(r.ClientSecret)
	r.Username = strings.TrimSpace(r.Username)
	return r
}

// Validate reports every missing field at once.
func (r TokenRequest) Validate() error {
	return r.ValidateMistyped("")
}

// ValidateMistyped is Validate for a body whose field named mistyped held a
// non-string value.  That field is reported as such, the others as usual.
func (r TokenRequest) ValidateMistyped(mistyped string) error {
	var verr ValidationError
	password := strings.TrimSpace(r.GrantType) == GrantPassword
	for _, f := range tokenFields {
		switch {
		case f.name == mistyped:
			verr.add(f.name, "The "+f.label+" field must be a string.")
		case (f.name == "username" || f.name == "password") && !password:
		case strings.TrimSpace(r.field(f.name)) == "":
			verr.add(f.name, "The "+f.label+" field is required.")
		}
	}
	if len(verr.Names) > 0 {
		return &verr
	}
	return nil
}

// IsTokenField reports whether name is one of the token request fields.
func IsTokenField(name string) bool {
	for _, f := range tokenFields {
		if f.name == name {
			return true
		}
	}
	return false
}

// UserView is the public projection of a user.  It never carries password
// material.
type UserView struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserView(u model.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

// TokenResult is the successful response of the token endpoint.
type TokenResult struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserView `json:"user"`
}

// IssuerConfig tunes the issuer.  Zero values fall back to one-year tokens
// and bcrypt's default cost; a TTL under one second is raised to one second.
type IssuerConfig struct {
	TokenTTL   time.Duration
	BcryptCost int
}

// TokenIssuer implements the password grant and token revocation.
type TokenIssuer struct {
	users   UserStore
	tokens  TokenStore
	clients auth.ClientVerifier
	codec   auth.TokenCodec
	events  queue.Publisher
	log     logging.Logger
	cfg     IssuerConfig

	now   func() time.Time
	newID func() string
}

func NewTokenIssuer(users UserStore, tokens TokenStore, clients auth.ClientVerifier, codec auth.TokenCodec,
	events queue.Publisher, log logging.Logger, cfg IssuerConfig) *TokenIssuer {
	switch {
	case cfg.TokenTTL <= 0:
		cfg.TokenTTL = 365 * 24 * time.Hour
	case cfg.TokenTTL < time.Second:
		// expires_in is reported in whole seconds and must stay positive
		cfg.TokenTTL = time.Second
	}
	if events == nil {
		events = queue.Nop{}
	}
	return &TokenIssuer{
		users:   users,
		tokens:  tokens,
		clients: clients,
		codec:   codec,
		events:  events,
		log:     log.With("component", "token_issuer"),
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// IssueToken validates the request, authenticates the client, then the
// user, and mints a new token.  The client check always precedes the grant
// dispatch and the user lookup.  Earlier tokens of the same user stay valid.
func (s *TokenIssuer) IssueToken(ctx context.Context, req TokenRequest) (*TokenResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.clients.VerifyClient(req.ClientID, req.ClientSecret) {
		s.log.Info(ctx, "client authentication failed", "client_id", req.ClientID)
		return nil, ErrInvalidClient
	}
	if req.GrantType != GrantPassword {
		return nil, ErrUnsupportedGrantType
	}

	u, err := s.users.GetByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnPasswordCheck(req.Password, s.cfg.BcryptCost)
			return nil, ErrInvalidGrant
		}
		return nil, storageErr("load user", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidGrant
	}

	now := s.now().UTC()
	tok := model.AccessToken{
		ID:        s.newID(),
		UserID:    u.ID,
		Name:      personalTokenName,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		CreatedAt: now,
	}
	raw, err := s.codec.Encode(auth.TokenClaims{TokenID: tok.ID, UserID: u.ID, IssuedAt: now, ExpiresAt: tok.ExpiresAt})
	if err != nil {
		return nil, fmt.Errorf("encode token: %w", err)
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, storageErr("store token", err)
	}

	s.log.Info(ctx, "token issued", "user_id", u.ID, "token_id", tok.ID, "client_id", req.ClientID)
	s.publish(ctx, queue.AuthEvent{
		Type:       queue.EventTokenIssued,
		TokenID:    tok.ID,
		UserID:     u.ID,
		ClientID:   req.ClientID,
		ExpiresAt:  tok.ExpiresAt,
		OccurredAt: now,
	})

	return &TokenResult{
		AccessToken: raw,
		TokenType:   TokenType,
		ExpiresIn:   int64(s.cfg.TokenTTL / time.Second),
		User:        NewUserView(u),
	}, nil
}

// RevokeToken marks tok as consumed.  Revoking twice is not an error.
func (s *TokenIssuer) RevokeToken(ctx context.Context, tok model.AccessToken) error {
	if err := s.tokens.Revoke(ctx, tok.ID); err != nil {
		return storageErr("revoke token", err)
	}
	s.log.Info(ctx, "token revoked", "user_id", tok.UserID, "token_id", tok.ID)
	s.publish(ctx, queue.AuthEvent{
		Type:       queue.EventTokenRevoked,
		TokenID:    tok.ID,
		UserID:     tok.UserID,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

func (s *TokenIssuer) publish(ctx context.Context, ev queue.AuthEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "audit event dropped", "type", ev.Type, "token_id", ev.TokenID, "err", err)
	}
}
