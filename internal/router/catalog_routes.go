package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/resort-booking/internal/config"
    "github.com/iliyamo/resort-booking/internal/handler"
    "github.com/iliyamo/resort-booking/internal/middleware"
    "github.com/iliyamo/resort-booking/internal/model"
)

// RegisterCatalog registers the room endpoints.  The two reads are public
// and served through the Redis response cache; every mutation requires the
// admin role and purges the cache once it succeeds.
func RegisterCatalog(e *echo.Echo, h *handler.RoomHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
    cached := middleware.NewRedisCache(cacheCfg, rdb)
    e.GET("/api/admin/product", h.List, cached)
    e.GET("/api/admin/product/:id", h.Get, cached)

    g := e.Group(
        "/api/admin",
        middleware.RequireRole(model.RoleAdmin),
        middleware.PurgeOnWrite(cacheCfg, rdb),
    )
    g.POST("/add-product", h.Create)
    // static segments win over :id in echo's router
    g.POST("/product/bulk-delete", h.BulkDelete)
    g.POST("/product/bulk-price", h.BulkPrice)
    g.PUT("/product/:id", h.Update)
    g.PATCH("/product/:id", h.SetAvailability)
    g.DELETE("/product/:id", h.Delete)
}
