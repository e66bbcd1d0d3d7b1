package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// CanonicalPath rejects request paths that a downstream server could resolve
// to a different route than the one echo matched: dot segments, encoded
// slashes and backslashes. Register it with echo.Pre so it runs before routing.
func CanonicalPath() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ambiguousPath(c.Request().URL) {
				return echo.NewHTTPError(http.StatusBadRequest, "malformed request path")
			}
			return next(c)
		}
	}
}

func ambiguousPath(u *url.URL) bool {
	if strings.Contains(u.Path, `\`) {
		return true
	}
	escaped := strings.ToLower(u.EscapedPath())
	if strings.Contains(escaped, "%2f") || strings.Contains(escaped, "%5c") {
		return true
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment == "." || segment == ".." {
			return true
		}
	}
	return false
}
