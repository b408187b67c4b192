package handler // declare the package name; contains HTTP handlers

import (
    "context"      // bounded ping
    "database/sql" // DB handle whose reachability is reported
    "net/http"     // status codes
    "time"         // ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health returns a readiness endpoint for load balancers.  It answers 200
// "ok" while the database responds to a ping and 503 otherwise.  A nil db
// reports liveness only.
func Health(db *sql.DB) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db == nil {
            return c.String(http.StatusOK, "ok")
        }
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            return c.String(http.StatusServiceUnavailable, "database unavailable")
        }
        return c.String(http.StatusOK, "ok")
    }
}
