package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Health is a liveness probe used by load balancers and monitoring
// systems.  It returns a plain text "ok" with 200 while the process runs.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports whether the service's dependencies answer.  Redis is
// optional; a nil client is skipped.
func Ready(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        checks := echo.Map{}
        ready := true
        if err := db.PingContext(ctx); err != nil {
            checks["database"] = "down"
            ready = false
        } else {
            checks["database"] = "up"
        }
        if rdb != nil {
            if err := rdb.Ping(ctx).Err(); err != nil {
                checks["redis"] = "down"
                ready = false
            } else {
                checks["redis"] = "up"
            }
        }
        if !ready {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "checks": checks})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready", "checks": checks})
    }
}
