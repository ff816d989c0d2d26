package handler // handler holds the Echo HTTP handlers

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/audit"
    "github.com/mrjaketay/timeApp-sub001/internal/middleware"
    "github.com/mrjaketay/timeApp-sub001/internal/obs"
    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

const requestTimeout = 5 * time.Second

// requestCtx bounds a request's store calls and tags them with the request
// id and the caller for audit lines.
func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    ctx = audit.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))
    ctx = audit.WithActor(ctx, middleware.UserID(c))
    return ctx, cancel
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(k service.Kind) int {
    switch k {
    case service.KindValidation, service.KindExpired:
        return http.StatusBadRequest
    case service.KindUnauthorized:
        return http.StatusUnauthorized
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindConflict:
        return http.StatusConflict
    }
    return http.StatusInternalServerError
}

// errorBody returns the status and {"error": msg} body for err.  Internal
// failures are logged with their cause; callers only see "internal error".
func errorBody(c echo.Context, err error) (int, echo.Map) {
    var se *service.Error
    if !errors.As(err, &se) {
        se = &service.Error{Kind: service.KindInternal, Msg: "internal error", Err: err}
    }
    status := statusFor(se.Kind)
    if status == http.StatusInternalServerError {
        obs.Error("request failed", se, map[string]any{
            "request_id": c.Response().Header().Get(echo.HeaderXRequestID),
            "method":     c.Request().Method,
            "path":       c.Path(),
        })
    }
    return status, echo.Map{"error": se.Msg}
}

func respondError(c echo.Context, err error) error {
    status, body := errorBody(c, err)
    return c.JSON(status, body)
}

func badBody(c echo.Context) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
}

// actors resolves the authenticated caller.  Handlers embed it.
type actors struct {
    Actors *service.ActorResolver
}

func (a actors) actor(ctx context.Context, c echo.Context) (*service.Actor, error) {
    uid := middleware.UserID(c)
    if uid == "" {
        return nil, &service.Error{Kind: service.KindUnauthorized, Msg: "Unauthorized"}
    }
    return a.Actors.Resolve(ctx, uid)
}
