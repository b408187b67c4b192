package router // package router defines how HTTP routes are registered for the API

import (
    "database/sql" // DB handle for the health probe
    "strings"      // CORS origin list parsing

    "github.com/google/uuid"                           // request id generator
    "github.com/labstack/echo/v4"                      // Echo web framework
    echomw "github.com/labstack/echo/v4/middleware"    // stock recover, request id, CORS and static middleware
    "github.com/redis/go-redis/v9"                     // shared client for cache and rate limit
    "github.com/sirupsen/logrus"                       // request logging

    "github.com/iliyamo/resort-booking/internal/config"     // runtime configuration
    "github.com/iliyamo/resort-booking/internal/handler"    // HTTP handlers
    "github.com/iliyamo/resort-booking/internal/middleware" // JWT, cache, rate limit, logging
)

// Deps is everything the router needs to mount the API.  Redis may be nil,
// in which case the cache and the rate limiter pass requests through.
type Deps struct {
    Cfg       config.Config
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    Redis     *redis.Client
    Log       logrus.FieldLogger
    DB        *sql.DB
    Auth      *handler.AuthHandler
    Rooms     *handler.RoomHandler
    Bookings  *handler.BookingHandler
}

// New builds the Echo instance with the global middleware chain and every
// route group registered.
func New(d Deps) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true

    // Order matters: recover wraps everything, the request id must exist
    // before the logger reads it, and identity must be resolved before the
    // rate limiter keys on it.
    e.Use(echomw.Recover())
    e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
    e.Use(middleware.RequestLogger(d.Log))
    e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: splitOrigins(d.Cfg.CORSOrigins)}))
    e.Use(middleware.Identify(d.Cfg.JWTSecret))
    e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))

    RegisterRoutes(e, d.DB, d.Cfg)
    RegisterAuth(e, d.Auth, d.Cfg.JWTSecret)
    RegisterCatalog(e, d.Rooms, d.Cache, d.Redis)
    RegisterBookings(e, d.Bookings, d.Cfg.JWTSecret)
    return e
}

// RegisterRoutes registers the health probe and the uploaded image files.
func RegisterRoutes(e *echo.Echo, db *sql.DB, cfg config.Config) {
    e.GET("/healthz", handler.Health(db))
    e.Static(cfg.UploadURL, cfg.UploadDir)
}

// RegisterAuth registers the account and session endpoints.  register,
// login, refresh and logout are public; logout also accepts the bearer
// token resolved by the global Identify middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/api/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}

func splitOrigins(raw string) []string {
    out := []string{}
    for _, o := range strings.Split(raw, ",") {
        if o = strings.TrimSpace(o); o != "" {
            out = append(out, o)
        }
    }
    if len(out) == 0 {
        out = append(out, "*")
    }
    return out
}
