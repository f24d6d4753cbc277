// Package client talks to the catalog service and holds the client-side
// session and catalog state.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/iliyamo/insurance-catalog/internal/model"
)

// Default client credentials accepted by a stock server.
const (
	DefaultClientID     = "test_client"
	DefaultClientSecret = "test_secret"
)

// User is the account behind a session.
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenResponse is the result of a successful password grant.
type TokenResponse struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time
	User        User
}

// APIError is a non-2xx answer from the service.  Code and Description are
// set for OAuth failures, Message for everything else.
type APIError struct {
	Status      int
	Code        string `json:"error"`
	Description string `json:"error_description"`
	Message     string `json:"message"`
}

func (e *APIError) Error() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
}

// IsUnauthenticated reports whether err is a 401 from the service.
func IsUnauthenticated(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

type Option func(*API)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.httpClient = c }
}

// WithClientCredentials overrides the OAuth client pair.
func WithClientCredentials(id, secret string) Option {
	return func(a *API) {
		a.oauth.ClientID = id
		a.oauth.ClientSecret = secret
	}
}

// API is a thin HTTP client for the catalog service.  Once a token is set
// it is attached to every request.
type API struct {
	baseURL    string
	oauth      oauth2.Config
	httpClient *http.Client

	mu     sync.RWMutex
	token  *oauth2.Token
	authed *http.Client
}

func NewAPI(baseURL string, opts ...Option) *API {
	baseURL = strings.TrimRight(baseURL, "/")
	a := &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		oauth: oauth2.Config{
			ClientID:     DefaultClientID,
			ClientSecret: DefaultClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  baseURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *API) BaseURL() string { return a.baseURL }

// SetToken arms the client with a bearer token; "" disarms it.
func (a *API) SetToken(raw string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if raw == "" {
		a.token, a.authed = nil, nil
		return
	}
	a.token = &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, a.httpClient)
	a.authed = oauth2.NewClient(ctx, oauth2.StaticTokenSource(a.token))
}

// Token returns the current bearer token or "".
func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == nil {
		return ""
	}
	return a.token.AccessToken
}

func (a *API) client() *http.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.authed != nil {
		return a.authed
	}
	return a.httpClient
}

// IssueToken runs the password grant.  It does not arm the client; the
// session decides what to do with the token.
func (a *API) IssueToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return nil, retrieveError(re)
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}

	res := &TokenResponse{AccessToken: tok.AccessToken, TokenType: tok.Type(), Expiry: tok.Expiry}
	if raw := tok.Extra("user"); raw != nil {
		bs, err := json.Marshal(raw)
		if err == nil {
			_ = json.Unmarshal(bs, &res.User)
		}
	}
	return res, nil
}

func retrieveError(re *oauth2.RetrieveError) *APIError {
	ae := &APIError{Code: re.ErrorCode, Description: re.ErrorDescription}
	if re.Response != nil {
		ae.Status = re.Response.StatusCode
	}
	if ae.Code == "" && len(re.Body) > 0 {
		_ = json.Unmarshal(re.Body, ae)
	}
	return ae
}

// Logout revokes the current token on the server.
func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/logout", nil)
}

// Me returns the user owning the current token.
func (a *API) Me(ctx context.Context) (*User, error) {
	var u User
	if err := a.do(ctx, http.MethodGet, "/user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// ListProducts fetches the full catalog.
func (a *API) ListProducts(ctx context.Context) ([]model.Product, error) {
	var env envelope[[]model.Product]
	if err := a.do(ctx, http.MethodGet, "/products", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []model.Product{}
	}
	return env.Data, nil
}

// GetProduct fetches one product by external id.
func (a *API) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	var env envelope[model.Product]
	if err := a.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (a *API) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(body, ae)
		return ae
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
