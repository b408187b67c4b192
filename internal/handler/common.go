package handler // handler translates HTTP requests into service calls

import (
    "context"       // per-request deadline for DB work
    "encoding/json" // flexible id decoding
    "errors"        // errors.Is against service error kinds
    "net/http"      // status codes
    "strconv"       // id parsing
    "strings"       // trimming of query values
    "time"          // request timeout

    "github.com/labstack/echo/v4" // echo context and response helpers
    "github.com/sirupsen/logrus"  // server-side logging of unexpected failures

    "github.com/iliyamo/resort-booking/internal/service" // error kinds
)

// requestTimeout bounds every handler's database work.
const requestTimeout = 5 * time.Second

// reqCtx derives the handler context from the request so a client
// disconnect also cancels in-flight queries.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail writes the error envelope used by every endpoint.
func fail(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// writeError maps a service error to its status code.  Unexpected errors
// are logged and answered with an opaque 500.
func writeError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrValidation):
        return fail(c, http.StatusBadRequest, err.Error())
    case errors.Is(err, service.ErrUnauthorized):
        return fail(c, http.StatusUnauthorized, "Unauthorized")
    case errors.Is(err, service.ErrForbidden):
        return fail(c, http.StatusForbidden, "Forbidden")
    case errors.Is(err, service.ErrNotFound):
        return fail(c, http.StatusNotFound, err.Error())
    case errors.Is(err, context.DeadlineExceeded):
        logrus.WithError(err).WithField("path", c.Path()).Error("request timed out")
        return fail(c, http.StatusGatewayTimeout, "Request timed out")
    default:
        logrus.WithError(err).WithField("path", c.Path()).Error("request failed")
        return fail(c, http.StatusInternalServerError, "Internal server error")
    }
}

// parseID accepts a positive decimal id.
func parseID(raw string) (uint64, bool) {
    id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// flexID decodes an id sent either as a JSON number or as a numeric string;
// admin pages built for string ids send the latter.
type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
    var n uint64
    if err := json.Unmarshal(b, &n); err == nil {
        *f = flexID(n)
        return nil
    }
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    id, ok := parseID(s)
    if !ok {
        return errors.New("invalid id " + strconv.Quote(s))
    }
    *f = flexID(id)
    return nil
}

func toIDs(in []flexID) []uint64 {
    out := make([]uint64, len(in))
    for i, v := range in {
        out[i] = uint64(v)
    }
    return out
}
