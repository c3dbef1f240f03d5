package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDKey is where JWTAuth leaves the authenticated user's id.
const userIDKey = "user_id"

// SetUserID stores the authenticated user id on the context.
func SetUserID(c echo.Context, id uint64) { c.Set(userIDKey, id) }

// UserID returns the id put on the context by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// userLabel is UserID as a key fragment; "anon" when unauthenticated.
func userLabel(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
