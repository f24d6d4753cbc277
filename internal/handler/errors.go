package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/service"
)

// oauthError is the body of every token endpoint failure.
type oauthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// validationBody lists messages per field, e.g.
// {"message":"The username field is required.","errors":{"username":["..."]}}.
type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

type catalogBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// writeError maps a service error to its status code and body.  Unknown
// errors are logged and reported as server_error without detail.
func writeError(c echo.Context, log logging.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, newValidationBody(verr))
	case errors.Is(err, service.ErrInvalidClient):
		return c.JSON(http.StatusUnauthorized, oauthError{"invalid_client", "Client authentication failed"})
	case errors.Is(err, service.ErrInvalidGrant):
		return c.JSON(http.StatusUnauthorized, oauthError{"invalid_grant", "The user credentials were incorrect"})
	case errors.Is(err, service.ErrUnsupportedGrantType):
		return c.JSON(http.StatusBadRequest, oauthError{"unsupported_grant_type", "The authorization grant type is not supported"})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthenticated."})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, catalogBody{Success: false, Message: "Product not found"})
	default:
		log.Error(c.Request().Context(), "request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error"})
	}
}

func newValidationBody(verr *service.ValidationError) validationBody {
	fields := verr.Names
	body := validationBody{Errors: make(map[string][]string, len(fields))}
	for _, f := range fields {
		body.Errors[f] = []string{verr.Fields[f]}
	}
	if len(fields) > 0 {
		body.Message = verr.Fields[fields[0]]
		if n := len(fields) - 1; n > 0 {
			body.Message += " (and " + plural(n, "more error") + ")"
		}
	}
	return body
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
