package middleware

import (
	"github.com/labstack/echo/v4"
)

// UpstreamCredentials replaces the browser's credentials with the session
// identity's bearer token before a request is proxied to the academy API.
// It must run behind a guard, so the session is authenticated.
func UpstreamCredentials() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			req.Header.Del("Cookie")
			req.Header.Del(echo.HeaderAuthorization)
			if sess := SessionFrom(c); sess.Identity.Complete() {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+sess.Identity.Token)
			}
			return next(c)
		}
	}
}
