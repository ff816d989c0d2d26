package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/mrjaketay/timeApp-sub001/internal/handler"
	"github.com/mrjaketay/timeApp-sub001/internal/middleware"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// EmployerHandlers groups the handlers mounted behind the EMPLOYER role.
type EmployerHandlers struct {
	Employees  *handler.EmployeeHandler
	NFC        *handler.NFCHandler
	Attendance *handler.AttendanceHandler
	Reports    *handler.ReportHandler
}

// employerOnly is the middleware chain of every EMPLOYER route.
func employerOnly(jwtSecret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleEmployer)}
}

// RegisterEmployer registers EMPLOYER-scoped endpoints.  All routes
// require a valid JWT and the EMPLOYER role; tenant scoping happens in the
// services.
func RegisterEmployer(e *echo.Echo, h EmployerHandlers, jwtSecret string) {
	mw := employerOnly(jwtSecret)

	// ---- Employees ----
	e.POST("/employees", h.Employees.Create, mw...)
	e.GET("/employees", h.Employees.List, mw...)
	e.POST("/employees/:id/deactivate", h.Employees.Deactivate, mw...)

	// ---- NFC cards ----
	e.POST("/nfc/register", h.NFC.Register, mw...)
	e.GET("/nfc/cards", h.NFC.List, mw...)
	e.POST("/nfc/cards/:id/deactivate", h.NFC.Deactivate, mw...)
	e.POST("/nfc/tap", h.NFC.Tap, mw...)

	// ---- Timesheets & reports ----
	e.GET("/timesheets", h.Attendance.Timesheets, mw...)
	e.GET("/reports/export", h.Reports.Export, mw...)
}
