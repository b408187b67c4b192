package middleware

// identity.go turns the values stored by the JWT middlewares into the
// service Principal and provides the user id used in cache and rate limit
// keys.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/resort-booking/internal/service"
)

// PrincipalFrom returns the caller's identity.  Anonymous requests yield the
// zero Principal.
func PrincipalFrom(c echo.Context) service.Principal {
    id, _ := c.Get(ctxUserID).(uint64)
    role, _ := c.Get(ctxRole).(string)
    if id == 0 {
        return service.Principal{}
    }
    return service.Principal{UserID: id, Role: role}
}

// userID returns the caller's id as a string, or "anon" when no user is
// authenticated.
func userID(c echo.Context) string {
    if p := PrincipalFrom(c); p.Authenticated() {
        return strconv.FormatUint(p.UserID, 10)
    }
    return "anon"
}
