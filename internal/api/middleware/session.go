package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/ports"
	"github.com/saa-academy/portal/pkg/logger"
)

const ctxSessionKey = "session"

type sessionCtxKey struct{}

// Session bootstraps the visitor's session once per request and publishes the
// snapshot on the echo context and the request context. Every guard further
// down the chain reads this same snapshot.
func Session(sessions ports.SessionService, cookie *SessionCookie, audit ports.AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			sessionID, present, err := cookie.Read(req)
			if err != nil {
				logger.FromEcho(c).Debug().Err(err).Msg("ignoring session cookie")
				cookie.Clear(c)
				audit.Record(domain.AuthEvent{
					Type:       domain.EventSessionDiscarded,
					Path:       req.URL.Path,
					RemoteAddr: c.RealIP(),
					Reason:     "cookie",
				})
			}

			sess := sessions.Bootstrap(req.Context(), sessionID)
			if present && sessionID != "" && sess.Stale {
				cookie.Clear(c)
			}

			SetSession(c, sess)
			return next(c)
		}
	}
}

// SetSession publishes sess for the rest of the request.
func SetSession(c echo.Context, sess domain.Session) {
	c.Set(ctxSessionKey, sess)
	c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), sess)))
}

// SessionFrom returns the request's session snapshot. Without the Session
// middleware it is the zero Session, which is uninitialized.
func SessionFrom(c echo.Context) domain.Session {
	if sess, ok := c.Get(ctxSessionKey).(domain.Session); ok {
		return sess
	}
	return SessionFromContext(c.Request().Context())
}

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

// SessionFromContext returns the session stored by WithSession, or the zero Session.
func SessionFromContext(ctx context.Context) domain.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(domain.Session)
	return sess
}
