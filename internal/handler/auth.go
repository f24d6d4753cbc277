package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/middleware"
	"github.com/iliyamo/insurance-catalog/internal/service"
)

// AuthHandler serves the token endpoint and the session routes behind
// BearerAuth.
type AuthHandler struct {
	Issuer *service.TokenIssuer
	Log    logging.Logger
}

func NewAuthHandler(issuer *service.TokenIssuer, log logging.Logger) *AuthHandler {
	return &AuthHandler{Issuer: issuer, Log: log}
}

// IssueToken: POST /oauth/token.  Accepts JSON or form bodies.
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req service.TokenRequest
	if err := c.Bind(&req); err != nil {
		if field, ok := mistypedField(err); ok {
			return writeError(c, h.Log, req.Normalize().ValidateMistyped(field))
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Issuer.IssueToken(ctx, req)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, res)
}

// Logout revokes the token that authenticated this request.  Other tokens
// of the same user are untouched.
func (h *AuthHandler) Logout(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return writeError(c, h.Log, service.ErrUnauthenticated)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Issuer.RevokeToken(ctx, p.Token); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return writeError(c, h.Log, service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, service.NewUserView(p.User))
}

// mistypedField returns the token request field that held a value of the
// wrong JSON type.  Echo wraps the decoder error in an *echo.HTTPError.
func mistypedField(err error) (string, bool) {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) {
		return "", false
	}
	if !service.IsTokenField(ute.Field) {
		return "", false
	}
	return ute.Field, true
}
