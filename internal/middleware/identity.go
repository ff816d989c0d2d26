package middleware

// identity.go holds the caller lookup shared by the rate limiter and the
// response cache key builders.

import "github.com/labstack/echo/v4"

// userID returns the authenticated user id, or "guest" when the request
// is anonymous.
func userID(c echo.Context) string {
    if id := UserID(c); id != "" {
        return id
    }
    return "guest"
}
