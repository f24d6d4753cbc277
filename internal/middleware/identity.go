package middleware

import "github.com/labstack/echo/v4"

// userID returns the id BearerAuth stored for the caller, or "anon" on
// routes that run before authentication.
func userID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
