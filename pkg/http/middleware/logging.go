package middleware

import (
	"time"

	applogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging emits one structured access log line per request.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			if l != nil {
				l.Info("http request",
					applogger.String("method", req.Method),
					applogger.String("uri", req.RequestURI),
					applogger.String("remote", req.RemoteAddr),
					applogger.Int("status", res.Status),
					applogger.Duration("latency", time.Since(start)),
				)
			}
			return err
		}
	}
}
