package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ActiveFunc reports whether the account with the given id may use the API.
type ActiveFunc func(ctx context.Context, userID uint64) (bool, error)

// RequireActive rejects tokens of accounts that were deactivated after the
// token was issued.  It must run after JWTAuth.  Lookup errors are 500s.
func RequireActive(active ActiveFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ok, err := active(c.Request().Context(), uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user lookup failed"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "user is inactive"})
			}
			return next(c)
		}
	}
}
