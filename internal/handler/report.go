package handler

import (
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

// ReportHandler serves report downloads.
type ReportHandler struct {
    actors
    Reports *service.ReportService
}

func NewReportHandler(r *service.ReportService, a *service.ActorResolver) *ReportHandler {
    return &ReportHandler{actors: actors{Actors: a}, Reports: r}
}

// Export handles GET /reports/export?startDate&endDate&format&employeeId&reportType.
func (h *ReportHandler) Export(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    out, err := h.Reports.Export(ctx, a, service.ExportInput{
        Range:      rangeFrom(c),
        Format:     c.QueryParam("format"),
        ReportType: c.QueryParam("reportType"),
        EmployeeID: c.QueryParam("employeeId"),
    })
    if err != nil {
        return respondError(c, err)
    }
    c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
    return c.Blob(http.StatusOK, out.ContentType, out.Body)
}
