package middleware // reusable HTTP middleware for the Echo router

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/model"
    "github.com/mrjaketay/timeApp-sub001/internal/utils"
)

// Context keys set by JWTAuth and OptionalJWT.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
)

// bearer returns the raw token of an "Authorization: Bearer ..." header.
func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    return raw, raw != ""
}

// JWTAuth validates a Bearer access token and stores the subject and role
// in the context.  Handlers read them with UserID and Role.  Requests
// without a valid token are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearer(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
            }
            c.Set(CtxUserID, claims.UserID)
            c.Set(CtxRole, claims.Role)
            return next(c)
        }
    }
}

// OptionalJWT is JWTAuth that never rejects: a missing or invalid token
// simply leaves the request anonymous.  Search uses it so unauthenticated
// callers get an empty result instead of an error.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearer(c); ok {
                if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
                    c.Set(CtxUserID, claims.UserID)
                    c.Set(CtxRole, claims.Role)
                }
            }
            return next(c)
        }
    }
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
    s, _ := c.Get(CtxUserID).(string)
    return s
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) model.Role {
    r, _ := c.Get(CtxRole).(model.Role)
    return r
}
