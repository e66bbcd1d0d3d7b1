package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/api/metrics"
	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/ports"
	"github.com/saa-academy/portal/internal/core/service"
)

// Guards builds route guards. A guard only ever calls the wrapped handler on
// an allow decision; checking and deny responses carry no protected content.
type Guards struct {
	redirects *service.RedirectCoordinator
	audit     ports.AuditRecorder
}

func NewGuards(redirects *service.RedirectCoordinator, audit ports.AuditRecorder) *Guards {
	return &Guards{redirects: redirects, audit: audit}
}

// Page guards a browser-facing route. Denied visitors are redirected to the
// login page with their destination captured in the URL.
func (g *Guards) Page(req domain.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			switch g.decide(c, sess, req) {
			case service.DecisionAllow:
				return next(c)
			case service.DecisionDeny:
				noStore(c)
				return c.Redirect(http.StatusFound, g.redirects.Capture(c.Request().URL))
			default:
				return checking(c)
			}
		}
	}
}

// API guards a JSON route. Denials are answered with 401 or 403 and the login
// route, never with a redirect.
func (g *Guards) API(req domain.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			switch g.decide(c, sess, req) {
			case service.DecisionAllow:
				return next(c)
			case service.DecisionDeny:
				noStore(c)
				status, msg := http.StatusUnauthorized, "authentication required"
				if sess.State == domain.StateAuthenticated {
					status, msg = http.StatusForbidden, "forbidden"
				}
				return c.JSON(status, map[string]string{
					"error":    msg,
					"redirect": g.redirects.LoginRoute(),
				})
			default:
				return checking(c)
			}
		}
	}
}

func (g *Guards) decide(c echo.Context, sess domain.Session, req domain.Requirement) service.Decision {
	decision := service.Decide(sess, req)
	metrics.GuardDecisionsTotal.WithLabelValues(req.String(), decision.String()).Inc()

	if decision == service.DecisionDeny {
		g.audit.Record(domain.AuthEvent{
			Type:       domain.EventAccessDenied,
			SessionID:  sess.ID,
			UserID:     identityID(sess),
			Role:       sess.Role(),
			Path:       c.Request().URL.Path,
			RemoteAddr: c.RealIP(),
			Reason:     req.String(),
		})
	}
	return decision
}

func checking(c echo.Context) error {
	noStore(c)
	c.Response().Header().Set("Retry-After", "1")
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
}

func noStore(c echo.Context) {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
}

func identityID(sess domain.Session) string {
	if sess.Identity == nil {
		return ""
	}
	return sess.Identity.ID
}
