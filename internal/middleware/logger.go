package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger writes one structured entry per request after it is served.
// Responses of 500 and above log at error level, 4xx at warn.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()

            err := next(c)
            if err != nil {
                // Let echo render the error first so the logged status is final.
                c.Error(err)
            }

            req := c.Request()
            res := c.Response()
            entry := log.WithFields(logrus.Fields{
                "method":     req.Method,
                "path":       req.URL.Path,
                "route":      c.Path(),
                "status":     res.Status,
                "duration":   time.Since(start).String(),
                "client_ip":  c.RealIP(),
                "user_agent": req.UserAgent(),
                "request_id": res.Header().Get(echo.HeaderXRequestID),
                "user":       userID(c),
            })
            switch {
            case res.Status >= 500:
                if err != nil {
                    entry = entry.WithError(err)
                }
                entry.Error("request failed")
            case res.Status >= 400:
                entry.Warn("request rejected")
            default:
                entry.Info("request processed")
            }
            return nil
        }
    }
}
