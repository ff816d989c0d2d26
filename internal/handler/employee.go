package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

// EmployeeHandler manages employee profiles of the caller's company.
type EmployeeHandler struct {
    actors
    Employees *service.EmployeeService
}

func NewEmployeeHandler(emp *service.EmployeeService, a *service.ActorResolver) *EmployeeHandler {
    return &EmployeeHandler{actors: actors{Actors: a}, Employees: emp}
}

type employeeReq struct {
    Name                string   `json:"name"`
    Email               string   `json:"email"`
    EmployeeID          string   `json:"employeeId"`
    Phone               string   `json:"phone"`
    Address             string   `json:"address"`
    SalaryRate          *float64 `json:"salaryRate"`
    EmploymentStartDate string   `json:"employmentStartDate"`
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(c echo.Context) error {
    var req employeeReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    p, err := h.Employees.Create(ctx, a, service.EmployeeInput(req))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"employee": p})
}

// List handles GET /employees?active=true|false.
func (h *EmployeeHandler) List(c echo.Context) error {
    var active *bool
    if v := c.QueryParam("active"); v != "" {
        b, err := strconv.ParseBool(v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "active must be true or false"})
        }
        active = &b
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    out, err := h.Employees.List(ctx, a, active)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"employees": out})
}

// Deactivate handles POST /employees/:id/deactivate.
func (h *EmployeeHandler) Deactivate(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    if err := h.Employees.Deactivate(ctx, a, c.Param("id")); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
