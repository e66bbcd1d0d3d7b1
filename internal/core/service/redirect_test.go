package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saa-academy/portal/internal/core/domain"
)

func TestRedirect_CaptureThenReplay(t *testing.T) {
	rc := NewRedirectCoordinator("")

	login := rc.Capture(&url.URL{Path: "/enroll"})
	assert.Equal(t, "/login?redirect=%2Fenroll", login)

	u, err := url.Parse(login)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteLogin, u.Path)

	dest := rc.ReplayOrDefault(u.Query(), &domain.Identity{ID: "1", Role: domain.RoleUser, Token: "t"})
	assert.Equal(t, "/enroll", dest)
}

func TestRedirect_CaptureKeepsQuery(t *testing.T) {
	rc := NewRedirectCoordinator(domain.RouteLogin)

	current, err := url.Parse("/admin/courses?page=2&sort=title")
	require.NoError(t, err)

	u, err := url.Parse(rc.Capture(current))
	require.NoError(t, err)

	dest, ok := rc.Pending(u.Query())
	require.True(t, ok)
	assert.Equal(t, "/admin/courses?page=2&sort=title", dest)
}

func TestRedirect_DefaultWhenNothingPending(t *testing.T) {
	rc := NewRedirectCoordinator("")
	cases := []struct {
		role domain.Role
		want string
	}{
		{domain.RoleSuperAdmin, "/admin/dashboard"},
		{domain.RoleLegacyAdmin, "/admin/dashboard"},
		{domain.RoleAdmissionsAdmin, "/admin/dashboard"},
		{domain.RoleUser, "/my-dashboard"},
		{"Unknown", "/my-dashboard"},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			got := rc.ReplayOrDefault(url.Values{}, &domain.Identity{ID: "1", Role: tc.role, Token: "t"})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRedirect_RejectsUnsafeDestinations(t *testing.T) {
	rc := NewRedirectCoordinator("")
	unsafe := []string{
		"https://evil.example/phish",
		"//evil.example",
		"/\\evil.example",
		"evil.example",
		"javascript:alert(1)",
		"/login",
		"/login?redirect=/enroll",
		"/register",
		"/logout",
		"/enroll\r\nSet-Cookie: x=1",
		"",
	}
	for _, raw := range unsafe {
		t.Run(raw, func(t *testing.T) {
			_, ok := rc.Pending(url.Values{RedirectParam: {raw}})
			assert.False(t, ok)

			got := rc.ReplayOrDefault(url.Values{RedirectParam: {raw}}, &domain.Identity{ID: "1", Role: domain.RoleUser, Token: "t"})
			assert.Equal(t, domain.RouteStudentDashboard, got)
		})
	}
}

func TestRedirect_NotPermittedFallsBackToHome(t *testing.T) {
	rc := NewRedirectCoordinator("")
	query := url.Values{RedirectParam: {"/admin/users"}}

	got := rc.ReplayOrDefault(query, &domain.Identity{ID: "1", Role: domain.RoleContentAdmin, Token: "t"})
	assert.Equal(t, domain.RouteAdminDashboard, got)

	got = rc.ReplayOrDefault(query, &domain.Identity{ID: "1", Role: domain.RoleSuperAdmin, Token: "t"})
	assert.Equal(t, "/admin/users", got)
}

func TestRedirect_CaptureOfAuthPagesDropsDestination(t *testing.T) {
	rc := NewRedirectCoordinator("")
	assert.Equal(t, "/login", rc.Capture(&url.URL{Path: "/login"}))
	assert.Equal(t, "/login", rc.Capture(nil))
}
