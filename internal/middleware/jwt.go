package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/service"
)

// Context keys set by BearerAuth.
const (
	CtxPrincipal = "principal"
	CtxUserID    = "user_id"
	CtxTokenID   = "token_id"
)

// TokenAuthorizer resolves a raw bearer token.  *service.Authorizer
// satisfies it.
type TokenAuthorizer interface {
	Authorize(ctx context.Context, raw string) (*service.Principal, error)
}

// BearerAuth rejects the request with 401 unless the Authorization header
// carries a live bearer token.  On success the principal is stored in the
// context under CtxPrincipal and its ids under CtxUserID and CtxTokenID.
func BearerAuth(authz TokenAuthorizer, log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthenticated."})
			}

			ctx := c.Request().Context()
			p, err := authz.Authorize(ctx, raw)
			if err != nil {
				if errors.Is(err, service.ErrStorage) {
					log.Error(ctx, "authorize request", "err", err)
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthenticated."})
			}

			c.Set(CtxPrincipal, p)
			c.Set(CtxUserID, strconv.FormatUint(p.User.ID, 10))
			c.Set(CtxTokenID, p.Token.ID)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by BearerAuth, or nil.
func PrincipalFrom(c echo.Context) *service.Principal {
	p, _ := c.Get(CtxPrincipal).(*service.Principal)
	return p
}

// bearerToken extracts the credentials of a "Bearer <token>" header.  The
// scheme is matched case-insensitively.
func bearerToken(h string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
