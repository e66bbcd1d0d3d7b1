package service

import (
	"net/url"
	"strings"

	"github.com/saa-academy/portal/internal/core/domain"
)

// RedirectParam is the login-page query parameter carrying the pending destination.
const RedirectParam = "redirect"

// RedirectCoordinator keeps the destination an anonymous visitor was headed to
// in the URL of the login page, and replays it once the visitor signs in.
type RedirectCoordinator struct {
	loginRoute string
}

// NewRedirectCoordinator returns a coordinator that sends visitors to loginRoute.
// An empty loginRoute means domain.RouteLogin.
func NewRedirectCoordinator(loginRoute string) *RedirectCoordinator {
	if loginRoute == "" {
		loginRoute = domain.RouteLogin
	}
	return &RedirectCoordinator{loginRoute: loginRoute}
}

// LoginRoute returns the login entry point.
func (rc *RedirectCoordinator) LoginRoute() string {
	return rc.loginRoute
}

// Capture returns the login URL carrying current as the pending destination.
func (rc *RedirectCoordinator) Capture(current *url.URL) string {
	if current == nil {
		return rc.loginRoute
	}
	dest := current.EscapedPath()
	if dest == "" {
		dest = domain.RouteHome
	}
	if current.RawQuery != "" {
		dest += "?" + current.RawQuery
	}
	if _, ok := sanitizeDestination(dest); !ok {
		return rc.loginRoute
	}
	return rc.loginRoute + "?" + url.Values{RedirectParam: {dest}}.Encode()
}

// Pending returns the destination carried by query, if it is a safe local route.
func (rc *RedirectCoordinator) Pending(query url.Values) (string, bool) {
	return sanitizeDestination(query.Get(RedirectParam))
}

// ReplayOrDefault returns where identity goes after authenticating: the pending
// destination when one exists and identity may open it, otherwise its role's home.
func (rc *RedirectCoordinator) ReplayOrDefault(query url.Values, identity *domain.Identity) string {
	var role domain.Role
	if identity != nil {
		role = identity.Role
	}
	if dest, ok := rc.Pending(query); ok && domain.Permits(role, dest) {
		return dest
	}
	return domain.DefaultHomeFor(role)
}

// sanitizeDestination accepts only local absolute paths that do not lead back
// into the authentication pages.
func sanitizeDestination(raw string) (string, bool) {
	if raw == "" || raw[0] != '/' || strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "", false
	}
	switch strings.TrimSuffix(u.Path, "/") {
	case domain.RouteLogin, domain.RouteRegister, domain.RouteLogout:
		return "", false
	}
	return u.RequestURI(), true
}
