package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mrjaketay/timeApp-sub001/internal/handler"
	"github.com/mrjaketay/timeApp-sub001/internal/middleware"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// RegisterAttendance registers clock events under /attendance.  All routes
// require a valid JWT.  Any role may read its last event; recording needs
// an employee profile, which employers may also hold.  Listing the
// company's events is for employers.
func RegisterAttendance(e *echo.Echo, h *handler.AttendanceHandler, jwtSecret string) {
	g := e.Group("/attendance", middleware.JWTAuth(jwtSecret))

	g.GET("/last-event", h.LastEvent,
		middleware.RequireRole(model.RoleAdmin, model.RoleEmployer, model.RoleEmployee))
	g.POST("/events", h.Record, middleware.RequireRole(model.RoleEmployee, model.RoleEmployer))
	g.GET("/events", h.List, middleware.RequireRole(model.RoleEmployer))
}
