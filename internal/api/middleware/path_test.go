package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCanonicalPath(t *testing.T) {
	cases := []struct {
		target string
		ok     bool
	}{
		{"/api/admin/courses/42", true},
		{"/api/admin/courses/42?page=2", true},
		{"/courses/intro-to-go", true},
		{"/", true},
		{"/api/admin/courses/%2e%2e/users", false},
		{"/api/admin/courses/../users", false},
		{"/api/admin/courses/./users", false},
		{"/api/admin/courses/..%2fusers", false},
		{"/api/admin/courses/..%2Fusers", false},
		{"/api/admin/courses/..%5cusers", false},
		{"/api/admin/courses/%2E%2E", false},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, tc.target, nil), httptest.NewRecorder())
			called := false
			err := CanonicalPath()(func(echo.Context) error {
				called = true
				return nil
			})(c)

			if tc.ok {
				if err != nil || !called {
					t.Fatalf("expected %q to pass, err=%v", tc.target, err)
				}
				return
			}
			he, isHTTP := err.(*echo.HTTPError)
			if !isHTTP || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %q, got %v", tc.target, err)
			}
			if called {
				t.Fatalf("handler ran for %q", tc.target)
			}
		})
	}
}
