package logger

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const ctxLoggerKey = "logger"

// Middleware logs one summary line per request and stores a request-scoped
// logger (carrying request_id) on the echo context. Run it after
// middleware.RequestID so the id is already set.
func Middleware(l zerolog.Logger) echo.MiddlewareFunc {
	scope := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			scoped := l.With().Str("request_id", rid).Logger()
			c.Set(ctxLoggerKey, &scoped)
			return next(c)
		}
	}

	summary := middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := l.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = l.Error().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return summary(scope(next))
	}
}

// FromEcho returns the request-scoped logger, falling back to the singleton
// and then to a disabled logger. Like zerolog.Ctx it returns a pointer, so
// level methods can be chained on the result.
func FromEcho(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(ctxLoggerKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	if initialized {
		l := instance
		return &l
	}
	nop := zerolog.Nop()
	return &nop
}
