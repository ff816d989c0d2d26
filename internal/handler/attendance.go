package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

// AttendanceHandler serves clock events and derived timesheets.
type AttendanceHandler struct {
    actors
    Attendance *service.AttendanceService
    TimesheetSvc *service.TimesheetService
}

func NewAttendanceHandler(att *service.AttendanceService, ts *service.TimesheetService, a *service.ActorResolver) *AttendanceHandler {
    return &AttendanceHandler{actors: actors{Actors: a}, Attendance: att, TimesheetSvc: ts}
}

type recordReq struct {
    EventType      string   `json:"eventType"`
    LocationLat    *float64 `json:"locationLat"`
    LocationLng    *float64 `json:"locationLng"`
    AccuracyMeters float64  `json:"accuracyMeters"`
    Address        string   `json:"address"`
}

// Record handles POST /attendance/events.
func (h *AttendanceHandler) Record(c echo.Context) error {
    var req recordReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    if req.LocationLat == nil || req.LocationLng == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "locationLat and locationLng are required"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    ev, err := h.Attendance.RecordEvent(ctx, a, service.RecordInput{
        EventType:      req.EventType,
        Lat:            *req.LocationLat,
        Lng:            *req.LocationLng,
        AccuracyMeters: req.AccuracyMeters,
        Address:        req.Address,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"event": ev})
}

// LastEvent handles GET /attendance/last-event; event is null when the
// caller has none.
func (h *AttendanceHandler) LastEvent(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    ev, err := h.Attendance.LastEvent(ctx, a)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"event": ev})
}

func rangeFrom(c echo.Context) service.DateRange {
    return service.DateRange{StartDate: c.QueryParam("startDate"), EndDate: c.QueryParam("endDate")}
}

// List handles GET /attendance/events?startDate&endDate&employeeId.
func (h *AttendanceHandler) List(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    events, err := h.Attendance.List(ctx, a, rangeFrom(c), c.QueryParam("employeeId"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Timesheets handles GET /timesheets?date= and ?startDate&endDate.
func (h *AttendanceHandler) Timesheets(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    employeeID := c.QueryParam("employeeId")
    var out any
    if date := c.QueryParam("date"); date != "" {
        out, err = h.TimesheetSvc.Derive(ctx, a, date, employeeID)
    } else {
        out, err = h.TimesheetSvc.Range(ctx, a, rangeFrom(c), employeeID)
    }
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"timesheets": out})
}
