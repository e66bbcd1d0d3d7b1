package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saa-academy/portal/internal/api/middleware"
	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/service"
)

type stubSessionService struct {
	loginSess  domain.Session
	loginErr   error
	logouts    []string
	lastLogin  []string
	registered []string
}

func (s *stubSessionService) Bootstrap(context.Context, string) domain.Session {
	return domain.Anonymous()
}

func (s *stubSessionService) Login(_ context.Context, sessionID, email, password string) (domain.Session, error) {
	s.lastLogin = []string{sessionID, email, password}
	if s.loginErr != nil {
		return domain.Session{}, s.loginErr
	}
	return s.loginSess, nil
}

func (s *stubSessionService) Register(_ context.Context, sessionID, username, email, _ string) (domain.Session, error) {
	s.registered = []string{sessionID, username, email}
	if s.loginErr != nil {
		return domain.Session{}, s.loginErr
	}
	return s.loginSess, nil
}

func (s *stubSessionService) Logout(_ context.Context, sessionID string) domain.Session {
	s.logouts = append(s.logouts, sessionID)
	return domain.Anonymous()
}

type recordingAudit struct {
	events []domain.AuthEvent
}

func (r *recordingAudit) Record(evt domain.AuthEvent) {
	r.events = append(r.events, evt)
}

func newTestSessionHandler(sessions *stubSessionService) (*SessionHandler, *recordingAudit) {
	audit := &recordingAudit{}
	cookie := middleware.NewSessionCookie("academy_session", "0123456789abcdef0123456789abcdef", time.Hour, false)
	pages := NewPageHandler(service.NewNavigation())
	return NewSessionHandler(sessions, service.NewRedirectCoordinator(""), cookie, pages, audit), audit
}

func newRequestContext(method, target, body, contentType string, sess domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetSession(c, sess)
	return c, rec
}

func studentSession() domain.Session {
	return domain.Authenticated("new-sid", &domain.Identity{
		ID:       "u1",
		Username: "ana",
		Email:    "ana@example.com",
		Role:     domain.RoleUser,
		Token:    "backend-token",
	})
}

func TestSessionHandler_Login_JSON(t *testing.T) {
	sessions := &stubSessionService{loginSess: studentSession()}
	h, audit := newTestSessionHandler(sessions)
	c, rec := newRequestContext(http.MethodPost, "/login?redirect=%2Fenroll",
		`{"email":"ana@example.com","password":"secret"}`, echo.MIMEApplicationJSON, domain.Anonymous())

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Identity map[string]any `json:"identity"`
		Redirect string         `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Redirect != "/enroll" {
		t.Fatalf("expected pending destination, got %q", resp.Redirect)
	}
	if _, leaked := resp.Identity["token"]; leaked || strings.Contains(rec.Body.String(), "backend-token") {
		t.Fatalf("token must not reach the browser: %s", rec.Body.String())
	}
	if resp.Identity["home"] != domain.RouteStudentDashboard {
		t.Fatalf("unexpected home %v", resp.Identity["home"])
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if len(audit.events) != 1 || audit.events[0].Type != domain.EventLoginSucceeded {
		t.Fatalf("expected login_succeeded event, got %+v", audit.events)
	}
}

func TestSessionHandler_Login_FormRedirects(t *testing.T) {
	admin := domain.Authenticated("new-sid", &domain.Identity{ID: "u2", Role: domain.RoleSuperAdmin, Token: "t"})
	h, _ := newTestSessionHandler(&stubSessionService{loginSess: admin})
	form := url.Values{"email": {"root@example.com"}, "password": {"secret"}}
	c, rec := newRequestContext(http.MethodPost, "/login", form.Encode(), echo.MIMEApplicationForm, domain.Anonymous())

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != domain.RouteAdminDashboard {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestSessionHandler_Login_OpenRedirectIgnored(t *testing.T) {
	h, _ := newTestSessionHandler(&stubSessionService{loginSess: studentSession()})
	form := url.Values{"email": {"ana@example.com"}, "password": {"secret"}}
	c, rec := newRequestContext(http.MethodPost, "/login?redirect=https%3A%2F%2Fevil.example", form.Encode(), echo.MIMEApplicationForm, domain.Anonymous())

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != domain.RouteStudentDashboard {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestSessionHandler_Login_Failure(t *testing.T) {
	sessions := &stubSessionService{loginErr: fmt.Errorf("%w: Invalid email or password", domain.ErrInvalidCredentials)}
	h, audit := newTestSessionHandler(sessions)
	prior := domain.Authenticated("old-sid", &domain.Identity{ID: "u1", Role: domain.RoleUser, Token: "t"})
	c, rec := newRequestContext(http.MethodPost, "/login", `{"email":"ana@example.com","password":"bad"}`, echo.MIMEApplicationJSON, prior)

	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if sessions.lastLogin[0] != "old-sid" {
		t.Fatalf("expected current session ID to be passed, got %v", sessions.lastLogin)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not touch the cookie")
	}
	if middleware.SessionFrom(c).ID != "old-sid" {
		t.Fatalf("failed login must keep the prior session")
	}
	if len(audit.events) != 1 || audit.events[0].Type != domain.EventLoginFailed {
		t.Fatalf("expected login_failed event, got %+v", audit.events)
	}
}

func TestSessionHandler_Login_Validation(t *testing.T) {
	sessions := &stubSessionService{}
	h, _ := newTestSessionHandler(sessions)
	c, _ := newRequestContext(http.MethodPost, "/login", `{"email":"not-an-email"}`, echo.MIMEApplicationJSON, domain.Anonymous())

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if sessions.lastLogin != nil {
		t.Fatalf("backend must not be called on invalid input")
	}
}

func TestSessionHandler_Register(t *testing.T) {
	sessions := &stubSessionService{loginSess: studentSession()}
	h, audit := newTestSessionHandler(sessions)
	body := `{"username":" ana ","email":"ana@example.com","password":"secret1","confirm_password":"secret1"}`
	c, rec := newRequestContext(http.MethodPost, "/register", body, echo.MIMEApplicationJSON, domain.Anonymous())

	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sessions.registered[1] != "ana" {
		t.Fatalf("expected trimmed username, got %q", sessions.registered[1])
	}
	if len(audit.events) != 1 || audit.events[0].Type != domain.EventRegistered {
		t.Fatalf("expected registered event, got %+v", audit.events)
	}
}

func TestSessionHandler_Register_PasswordMismatch(t *testing.T) {
	h, _ := newTestSessionHandler(&stubSessionService{})
	body := `{"username":"ana","email":"ana@example.com","password":"secret1","confirm_password":"secret2"}`
	c, _ := newRequestContext(http.MethodPost, "/register", body, echo.MIMEApplicationJSON, domain.Anonymous())

	he, ok := h.Register(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", he)
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	sessions := &stubSessionService{}
	h, audit := newTestSessionHandler(sessions)
	c, rec := newRequestContext(http.MethodPost, "/logout", "", "", studentSession())

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != domain.RouteHome {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if len(sessions.logouts) != 1 || sessions.logouts[0] != "new-sid" {
		t.Fatalf("unexpected logouts %v", sessions.logouts)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cookies)
	}
	if len(audit.events) != 1 || audit.events[0].Type != domain.EventLoggedOut {
		t.Fatalf("expected logged_out event, got %+v", audit.events)
	}
}

func TestSessionHandler_Logout_AnonymousIsIdempotent(t *testing.T) {
	sessions := &stubSessionService{}
	h, audit := newTestSessionHandler(sessions)
	c, rec := newRequestContext(http.MethodPost, "/logout", "", "", domain.Anonymous())
	c.Request().Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"redirect":"/"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if len(audit.events) != 0 {
		t.Fatalf("anonymous logout is not audited")
	}
}

func TestSessionHandler_Current(t *testing.T) {
	cases := []struct {
		sess      domain.Session
		wantState string
		identity  bool
	}{
		{domain.Session{}, "uninitialized", false},
		{domain.Anonymous(), "anonymous", false},
		{studentSession(), "authenticated", true},
	}
	for _, tc := range cases {
		h, _ := newTestSessionHandler(&stubSessionService{})
		c, rec := newRequestContext(http.MethodGet, "/api/session", "", "", tc.sess)

		if err := h.Current(c); err != nil {
			t.Fatalf("Current returned error: %v", err)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["state"] != tc.wantState {
			t.Fatalf("expected state %s, got %v", tc.wantState, resp["state"])
		}
		if _, ok := resp["identity"]; ok != tc.identity {
			t.Fatalf("state %s: identity present=%v", tc.wantState, ok)
		}
		if strings.Contains(rec.Body.String(), "backend-token") {
			t.Fatalf("token leaked")
		}
	}
}

func TestSessionHandler_LoginPage(t *testing.T) {
	h, _ := newTestSessionHandler(&stubSessionService{})

	c, rec := newRequestContext(http.MethodGet, "/login?redirect=%2Fenroll", "", "", domain.Anonymous())
	if err := h.LoginPage("Sign in")(c); err != nil {
		t.Fatalf("LoginPage returned error: %v", err)
	}
	var page map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page["pending"] != "/enroll" || page["title"] != "Sign in" {
		t.Fatalf("unexpected page %v", page)
	}

	c, rec = newRequestContext(http.MethodGet, "/login?redirect=%2Fenroll", "", "", studentSession())
	if err := h.LoginPage("Sign in")(c); err != nil {
		t.Fatalf("LoginPage returned error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/enroll" {
		t.Fatalf("signed-in visitor should be sent on, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
