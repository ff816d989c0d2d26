package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mrjaketay/timeApp-sub001/internal/handler"
	"github.com/mrjaketay/timeApp-sub001/internal/middleware"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/obs"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// liveness, readiness and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db, rdb))
	e.GET("/metrics", obs.Handler())
}

// RegisterAuth registers account routes.  Registration, login, refresh and
// logout need no session; /auth/me requires a valid access token of any
// role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	e.POST("/register", a.Register)

	g := e.Group("/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)   // refresh_token body or bearer header

	g.GET("/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleEmployer, model.RoleEmployee),
	)
}

// RegisterInvitations registers the public validate/accept pair and the
// employer-only create/list pair.
func RegisterInvitations(e *echo.Echo, h *handler.InvitationHandler, jwtSecret string) {
	e.GET("/invitations/validate", h.Validate)
	e.POST("/invitations/accept", h.Accept)

	mw := employerOnly(jwtSecret)
	e.POST("/invitations", h.Create, mw...)
	e.GET("/invitations", h.List, mw...)
}

// RegisterSearch registers the typeahead endpoints.  Authentication is
// optional; the handler answers anonymous callers with an empty list.
// cache may be nil.
func RegisterSearch(e *echo.Echo, h *handler.SearchHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{middleware.OptionalJWT(jwtSecret)}
	if cache != nil {
		mws = append(mws, cache)
	}
	e.GET("/search/:type", h.Suggest, mws...)
}
