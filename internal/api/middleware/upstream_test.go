package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/core/domain"
)

func TestUpstreamCredentials_ReplacesBrowserCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/courses", nil)
	req.Header.Set("Cookie", "academy_session=abc")
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	SetSession(c, domain.Authenticated("sid", &domain.Identity{ID: "u1", Role: domain.RoleContentAdmin, Token: "backend-token"}))

	var got http.Header
	h := UpstreamCredentials()(func(c echo.Context) error {
		got = c.Request().Header
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Get("Cookie") != "" {
		t.Fatalf("cookie must not be forwarded")
	}
	if auth := got.Get(echo.HeaderAuthorization); auth != "Bearer backend-token" {
		t.Fatalf("unexpected Authorization %q", auth)
	}
}

func TestUpstreamCredentials_AnonymousSendsNothing(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/enrollments", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	SetSession(c, domain.Anonymous())

	h := UpstreamCredentials()(func(c echo.Context) error {
		if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
			t.Fatalf("no credentials expected")
		}
		return nil
	})
	_ = h(c)
}
