package router

// This file registers the booking routes: the signed-in user's own
// bookings and the admin decision endpoints.  The admin dashboard drives
// status changes and deletions through /api/users, so those paths are kept.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/resort-booking/internal/handler"
    "github.com/iliyamo/resort-booking/internal/middleware"
    "github.com/iliyamo/resort-booking/internal/model"
)

// RegisterBookings mounts the user booking group (JWT required) and the
// admin booking group (JWT plus the admin role).
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
    mine := e.Group("/api/bookings", middleware.JWTAuth(jwtSecret))
    mine.POST("", h.Create)
    mine.GET("/mine", h.Mine)

    admin := e.Group(
        "/api",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleAdmin),
    )
    admin.POST("/admin/approve-booking", h.Decide)
    admin.GET("/admin/users", h.Users)
    admin.POST("/users", h.SetStatus)
    admin.DELETE("/users", h.Delete)
}
