package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/core/domain"
)

// RBAC enforces req against the role injected by Bearer.
func RBAC(req domain.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(domain.Role)
			if role == "" || !req.Allows(role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
