package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCookie() *SessionCookie {
	return NewSessionCookie("academy_session", testSecret, time.Hour, true)
}

// writtenCookie returns the cookie set on rec by Write or Clear.
func writtenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestSessionCookie_WriteThenRead(t *testing.T) {
	sc := newTestCookie()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := sc.Write(c, "sid-1"); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	cookie := writtenCookie(t, rec)
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sid, present, err := sc.Read(req)
	if err != nil || !present || sid != "sid-1" {
		t.Fatalf("Read = (%q, %v, %v), want (sid-1, true, nil)", sid, present, err)
	}
}

func TestSessionCookie_Absent(t *testing.T) {
	sid, present, err := newTestCookie().Read(httptest.NewRequest(http.MethodGet, "/", nil))
	if sid != "" || present || err != nil {
		t.Fatalf("Read = (%q, %v, %v), want empty", sid, present, err)
	}
}

func TestSessionCookie_RejectsTampering(t *testing.T) {
	sign := func(secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
		var key interface{} = []byte(secret)
		if method == jwt.SigningMethodNone {
			key = jwt.UnsafeAllowNoneSignatureType
		}
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign("another-secret-another-secret-xx", jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "sid-1"}),
		"alg none":     sign("", jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "sid-1"}),
		"other hmac":   sign(testSecret, jwt.SigningMethodHS512, jwt.RegisteredClaims{ID: "sid-1"}),
		"no id":        sign(testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{}),
		"expired": sign(testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ID:        "sid-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "academy_session", Value: value})

			sid, present, err := newTestCookie().Read(req)
			if err == nil || !present || sid != "" {
				t.Fatalf("Read = (%q, %v, %v), want rejection", sid, present, err)
			}
		})
	}
}

func TestSessionCookie_Clear(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	newTestCookie().Clear(c)
	cookie := writtenCookie(t, rec)
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected an expiring empty cookie, got %+v", cookie)
	}
}
