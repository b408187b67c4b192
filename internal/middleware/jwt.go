package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/resort-booking/internal/utils" // access token verification
)

// Context keys written by the JWT middlewares and read through
// PrincipalFrom.
const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// Identify resolves an optional Bearer access token.  Requests without an
// Authorization header pass through anonymously so the handler (or the
// service gate behind it) decides whether identity is required.  A header
// that is present but carries a bad token is rejected with 401.
func Identify(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if auth == "" {
                return next(c)
            }
            if !authenticate(c, secret, auth) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            return next(c)
        }
    }
}

// JWTAuth requires a valid Bearer access token and injects the subject and
// role into the request context.  Wrap routes that make no sense for an
// anonymous caller with it.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // The header must look like "Bearer <jwt>"; anything else is
            // treated as missing credentials.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            if !authenticate(c, secret, auth) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            return next(c)
        }
    }
}

// authenticate verifies the header value and stores the claims in the
// context.  It reports false for anything but a valid Bearer access token.
func authenticate(c echo.Context, secret, header string) bool {
    if !strings.HasPrefix(header, "Bearer ") {
        return false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
    claims, err := utils.ParseAccessToken(secret, raw)
    if err != nil {
        return false
    }
    // Handlers read these through PrincipalFrom rather than c.Get directly.
    c.Set(ctxUserID, claims.UserID)
    c.Set(ctxRole, claims.Role)
    return true
}
