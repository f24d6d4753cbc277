// Package testserver runs the full HTTP stack over in-memory stores.
package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/config"
	"github.com/iliyamo/insurance-catalog/internal/handler"
	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/middleware"
	"github.com/iliyamo/insurance-catalog/internal/router"
	"github.com/iliyamo/insurance-catalog/internal/service"
	"github.com/iliyamo/insurance-catalog/internal/testutil"
)

// Server is a running catalog service seeded with user1/pass1 and three
// products (HEALTH, AUTO, HEALTH).
type Server struct {
	*httptest.Server
	Users    *testutil.Users
	Tokens   *testutil.Tokens
	Products *testutil.Products
	Events   *testutil.Events
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Users:    &testutil.Users{},
		Tokens:   &testutil.Tokens{},
		Products: &testutil.Products{},
		Events:   &testutil.Events{},
	}
	s.Users.Add(t, "Test User", "user1", "pass1")
	s.Products.Add(testutil.Product("prod_001", "Premium Health Plan", "HEALTH", 200))
	s.Products.Add(testutil.Product("prod_005", "Auto Insurance Premium", "AUTO", 180))
	s.Products.Add(testutil.Product("prod_002", "Basic Health Plan", "HEALTH", 100))

	log := logging.Discard()
	codec := auth.NewJWTCodec("test-secret", "insurance-catalog")
	issuer := service.NewTokenIssuer(s.Users, s.Tokens, auth.ClientRegistry{"test_client": "test_secret"}, codec,
		s.Events, log, service.IssuerConfig{TokenTTL: config.DefaultTokenTTL, BcryptCost: bcrypt.MinCost})
	bearer := middleware.BearerAuth(service.NewAuthorizer(s.Users, s.Tokens, codec), log)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(issuer, log), bearer,
		middleware.NewTokenBucket(config.RateLimitConfig{}, nil, log))
	router.RegisterCatalog(e, handler.NewProductHandler(service.NewCatalog(s.Products), log), bearer,
		middleware.NewRedisCache(config.CacheConfig{}, nil, log))

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}
